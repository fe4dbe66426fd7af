package ad

import (
	"context"
	"sync/atomic"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"
)

// Native - нативный блок с собственной отрисовкой. Показ отмечается по событию показа (impression).
type Native struct {
	Lifecycle
	clicks atomic.Pointer[ClickListener]
}

var _ Unit = (*Native)(nil)

func NewNative(ctx context.Context, env Env, key string) *Native {
	v := &Native{}
	v.init(ctx, env, placement.CategoryNative, key)
	return v
}

func (v *Native) LoadAd()      { v.load(v.handle) }
func (v *Native) ShowAd() bool { return v.show() }

func (v *Native) DestroyAd() {
	v.clicks.Store(nil)
	v.teardown()
}

func (v *Native) SetClickListener(l ClickListener) {
	if l == nil {
		v.clicks.Store(nil)
		v.SetAdStatusListener(nil)
		return
	}
	v.clicks.Store(&l)
	v.SetAdStatusListener(l)
}

func (v *Native) handle(ev backend.Event) {
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
	case backend.EventPlayEnd:
		v.log.Debug("native video play end")
	default:
		v.log.WithField("event", ev.Kind.String()).Debug("unhandled native event")
	}
}
