package ad

import (
	"context"
	"sync/atomic"
	"time"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"
)

// DefaultSplashTimeout - время ожидания загрузки splash, если не задано в конфигурации
const DefaultSplashTimeout = 5 * time.Second

// Splash - заставка при запуске приложения
type Splash struct {
	Lifecycle
	ext atomic.Pointer[SplashListener]
}

var _ Unit = (*Splash)(nil)

func NewSplash(ctx context.Context, env Env, key string) *Splash {
	v := &Splash{}
	v.init(ctx, env, placement.CategorySplash, key)
	if v.loadTimeout <= 0 {
		v.loadTimeout = DefaultSplashTimeout
	}
	return v
}

func (v *Splash) LoadAd()      { v.load(v.handle) }
func (v *Splash) ShowAd() bool { return v.show() }

func (v *Splash) DestroyAd() {
	v.ext.Store(nil)
	v.teardown()
}

func (v *Splash) SetSplashListener(l SplashListener) {
	if l == nil {
		v.ext.Store(nil)
		v.SetAdStatusListener(nil)
		return
	}
	v.ext.Store(&l)
	v.SetAdStatusListener(l)
}

func (v *Splash) handle(ev backend.Event) {
	switch ev.Kind {
	case backend.EventLoaded:
		v.notifyLoaded()
	case backend.EventLoadFailed:
		v.failAttempt(ev.Reason())
	case backend.EventLoadTimeout:
		v.failAttempt(ErrLoadTimeout.Error())
	case backend.EventShown:
		v.notifyShown()
	case backend.EventClicked:
		dispatchExt(&v.Lifecycle, &v.ext, func(l SplashListener) { l.OnAdClicked() })
	case backend.EventShowFailed:
		if v.failAttempt(ev.Reason()) {
			v.dismissed(backend.DismissShowFailed)
		}
	case backend.EventClosed:
		if v.notifyClosed() {
			v.dismissed(ev.Dismiss)
		}
	default:
		v.log.WithField("event", ev.Kind.String()).Debug("unhandled splash event")
	}
}

func (v *Splash) dismissed(reason backend.DismissType) {
	dispatchExt(&v.Lifecycle, &v.ext, func(l SplashListener) { l.OnSplashDismissed(reason) })
}
