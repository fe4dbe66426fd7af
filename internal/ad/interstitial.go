package ad

import (
	"context"
	"sync/atomic"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"
)

// Interstitial - полноэкранная вставка
type Interstitial struct {
	Lifecycle
	clicks atomic.Pointer[ClickListener]
}

var _ Unit = (*Interstitial)(nil)

func NewInterstitial(ctx context.Context, env Env, key string) *Interstitial {
	v := &Interstitial{}
	v.init(ctx, env, placement.CategoryInterstitial, key)
	return v
}

func (v *Interstitial) LoadAd()      { v.load(v.handle) }
func (v *Interstitial) ShowAd() bool { return v.show() }

func (v *Interstitial) DestroyAd() {
	v.clicks.Store(nil)
	v.teardown()
}

func (v *Interstitial) SetClickListener(l ClickListener) {
	if l == nil {
		v.clicks.Store(nil)
		v.SetAdStatusListener(nil)
		return
	}
	v.clicks.Store(&l)
	v.SetAdStatusListener(l)
}

func (v *Interstitial) handle(ev backend.Event) {
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
		dispatchExt(&v.Lifecycle, &v.clicks, func(l ClickListener) { l.OnAdClicked() })
	default:
		v.log.WithField("event", ev.Kind.String()).Debug("unhandled interstitial event")
	}
}
