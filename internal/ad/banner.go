package ad

import (
	"context"
	"sync/atomic"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"
)

// Banner - баннер с автообновлением креатива на стороне SDK
type Banner struct {
	Lifecycle
	ext atomic.Pointer[BannerListener]
}

var _ Unit = (*Banner)(nil)

func NewBanner(ctx context.Context, env Env, key string) *Banner {
	v := &Banner{}
	v.init(ctx, env, placement.CategoryBanner, key)
	return v
}

func (v *Banner) LoadAd()      { v.load(v.handle) }
func (v *Banner) ShowAd() bool { return v.show() }

func (v *Banner) DestroyAd() {
	v.ext.Store(nil)
	v.teardown()
}

func (v *Banner) SetBannerListener(l BannerListener) {
	if l == nil {
		v.ext.Store(nil)
		v.SetAdStatusListener(nil)
		return
	}
	v.ext.Store(&l)
	v.SetAdStatusListener(l)
}

// handle: обновление креатива не меняет состояние, ошибка обновления только логируется
func (v *Banner) handle(ev backend.Event) {
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
		dispatchExt(&v.Lifecycle, &v.ext, func(l BannerListener) { l.OnAdClicked() })
	case backend.EventRefreshed:
		dispatchExt(&v.Lifecycle, &v.ext, func(l BannerListener) { l.OnAdRefreshed() })
	case backend.EventRefreshFailed:
		v.log.WithField("reason", ev.Reason()).Warn("banner refresh failed")
	default:
		v.log.WithField("event", ev.Kind.String()).Debug("unhandled banner event")
	}
}
