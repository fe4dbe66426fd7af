package ad

import (
	"context"
	"sync/atomic"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"
)

// RewardedVideo - блок видео с вознаграждением
type RewardedVideo struct {
	Lifecycle
	rewarded atomic.Pointer[RewardedListener]
}

var _ Unit = (*RewardedVideo)(nil)

func NewRewardedVideo(ctx context.Context, env Env, key string) *RewardedVideo {
	v := &RewardedVideo{}
	v.init(ctx, env, placement.CategoryRewardedVideo, key)
	return v
}

func (v *RewardedVideo) LoadAd() {
	v.load(v.handle)
}

func (v *RewardedVideo) ShowAd() bool {
	return v.show()
}

func (v *RewardedVideo) DestroyAd() {
	v.rewarded.Store(nil)
	v.teardown()
}

// SetRewardedAdListener задает слушателя вознаграждения и базового слушателя одновременно
func (v *RewardedVideo) SetRewardedAdListener(l RewardedListener) {
	if l == nil {
		v.rewarded.Store(nil)
		v.SetAdStatusListener(nil)
		return
	}
	v.rewarded.Store(&l)
	v.SetAdStatusListener(l)
}

func (v *RewardedVideo) handle(ev backend.Event) {
	switch ev.Kind {
	case backend.EventLoaded:
		v.notifyLoaded()
	case backend.EventLoadFailed, backend.EventShowFailed:
		v.failAttempt(ev.Reason())
	case backend.EventShown:
		v.notifyShown()
	case backend.EventClosed:
		v.notifyClosed()
	case backend.EventClicked:
		dispatchExt(&v.Lifecycle, &v.rewarded, func(l RewardedListener) { l.OnAdClicked() })
	case backend.EventRewarded:
		v.log.WithField("network", ev.Info.NetworkFirmID).Info("reward granted")
		dispatchExt(&v.Lifecycle, &v.rewarded, func(l RewardedListener) { l.OnRewardGranted() })
	case backend.EventPlayEnd:
		v.log.Debug("rewarded video play end")
	default:
		v.log.WithField("event", ev.Kind.String()).Debug("unhandled rewarded video event")
	}
}
