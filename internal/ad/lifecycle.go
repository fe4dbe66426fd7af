// Package ad implements the ad unit lifecycle shared by every backend and
// ad category: load, show, close and teardown, with listener notifications
// marshalled onto a single dispatcher goroutine.
package ad

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidPlacement = errors.New("Invalid placement id")
	ErrNoBackend        = errors.New("no ad backend configured")
	ErrLoadTimeout      = errors.New("load timeout")
)

// Dispatcher исполняет уведомления слушателей на выделенной горутине
type Dispatcher interface {
	Run(task func())
}

// DispatchFunc адаптирует функцию к Dispatcher
type DispatchFunc func(task func())

func (f DispatchFunc) Run(task func()) { f(task) }

// inline исполняет задачу на вызывающей горутине
var inline = DispatchFunc(func(task func()) { task() })

// Env - зависимости, общие для всех рекламных блоков приложения
type Env struct {
	Resolver   placement.Resolver
	Provider   backend.Provider
	Dispatcher Dispatcher
	Clock      clockwork.Clock
	Log        logrus.FieldLogger
	Observer   Observer
	// LoadTimeouts - ограничение времени загрузки по категориям, 0 - без ограничения
	LoadTimeouts map[placement.Category]time.Duration
}

// Unit - общий контракт рекламного блока любой категории
type Unit interface {
	ID() string
	Category() placement.Category
	PlacementID() string
	State() State
	IsAdReady() bool
	SetAdStatusListener(l StatusListener)
	LoadAd()
	ShowAd() bool
	DestroyAd()
}

type listenerRef struct {
	l StatusListener
}

// session связывает один объект SDK с блоком. События отсоединенной сессии отбрасываются.
type session struct {
	ad    backend.Ad
	timer atomic.Pointer[clockwork.Timer]
}

// Lifecycle - базовый автомат состояний, встраиваемый в блоки каждой категории.
// Поля состояния атомарны: их меняют и потребитель, и диспетчер.
type Lifecycle struct {
	ctx         context.Context
	env         Env
	log         logrus.FieldLogger
	id          string
	category    placement.Category
	placementID string
	loadTimeout time.Duration

	state             atomic.Int32
	loadInFlight      atomic.Bool
	hasLoadedCreative atomic.Bool
	listener          atomic.Pointer[listenerRef]
	session           atomic.Pointer[session]
}

// init разрешает placement id один раз; пустой id проверяется только при загрузке
func (l *Lifecycle) init(ctx context.Context, env Env, category placement.Category, key string) {
	if env.Dispatcher == nil {
		env.Dispatcher = inline
	}
	if env.Clock == nil {
		env.Clock = clockwork.NewRealClock()
	}
	if env.Log == nil {
		env.Log = logrus.StandardLogger()
	}

	l.ctx = ctx
	l.env = env
	l.id = uuid.NewString()
	l.category = category
	l.loadTimeout = env.LoadTimeouts[category]
	if env.Resolver != nil {
		l.placementID = env.Resolver.Resolve(category, key)
	}
	l.log = env.Log.WithFields(logrus.Fields{
		"unit":      l.id,
		"category":  category.String(),
		"placement": l.placementID,
	})
	if l.placementID == "" {
		l.log.WithField("key", key).Warn("placement key is not configured")
	}
}

func (l *Lifecycle) ID() string                   { return l.id }
func (l *Lifecycle) Category() placement.Category { return l.category }
func (l *Lifecycle) PlacementID() string          { return l.placementID }
func (l *Lifecycle) State() State                 { return State(l.state.Load()) }
func (l *Lifecycle) LoadInFlight() bool           { return l.loadInFlight.Load() }
func (l *Lifecycle) HasLoadedCreative() bool      { return l.hasLoadedCreative.Load() }

// IsAdReady сообщает, можно ли показать загруженный креатив
func (l *Lifecycle) IsAdReady() bool {
	return l.hasLoadedCreative.Load() && l.State() == StateLoaded
}

// SetAdStatusListener заменяет слушателя, состояние не меняется
func (l *Lifecycle) SetAdStatusListener(listener StatusListener) {
	if listener == nil {
		l.listener.Store(nil)
		return
	}
	l.listener.Store(&listenerRef{l: listener})
}

func (l *Lifecycle) setState(s State) {
	l.state.Store(int32(s))
}

func (l *Lifecycle) contextValid() bool {
	return l.ctx != nil && l.ctx.Err() == nil
}

// canStartLoad проверяет условия начала загрузки.
// Недействительный контекст и повторная загрузка отклоняются молча,
// пустой placement id приводит к уведомлению об ошибке.
func (l *Lifecycle) canStartLoad() bool {
	if !l.contextValid() {
		l.log.Error("context is not valid, load skipped")
		return false
	}
	if l.placementID == "" {
		l.notifyFailed(ErrInvalidPlacement.Error())
		return false
	}
	if !l.loadInFlight.CompareAndSwap(false, true) {
		l.log.Debug("load already in flight, skipped")
		return false
	}
	if st := l.State(); !st.canLoadFrom() {
		l.loadInFlight.Store(false)
		l.log.WithField("state", st.String()).Debug("load not allowed in current state, skipped")
		return false
	}

	l.release(l.session.Swap(nil))
	l.setState(StateLoading)
	l.observe(TransitionLoading, "")
	return true
}

// load запускает загрузку через SDK; translate получает события SDK на горутине диспетчера
func (l *Lifecycle) load(translate func(backend.Event)) {
	if !l.canStartLoad() {
		return
	}
	if l.env.Provider == nil {
		l.notifyFailed(ErrNoBackend.Error())
		return
	}
	handle, err := l.env.Provider.NewAd(l.category, l.placementID)
	if err != nil {
		l.notifyFailed(err.Error())
		return
	}

	s := &session{ad: handle}
	l.session.Store(s)
	handle.SetListener(func(ev backend.Event) {
		l.env.Dispatcher.Run(func() {
			if l.session.Load() != s {
				l.log.WithField("event", ev.Kind.String()).Debug("dropping late backend event")
				return
			}
			translate(ev)
		})
	})
	l.armTimeout(s)
	handle.Load()
}

func (l *Lifecycle) armTimeout(s *session) {
	if l.loadTimeout <= 0 {
		return
	}
	t := l.env.Clock.AfterFunc(l.loadTimeout, func() {
		l.env.Dispatcher.Run(func() {
			if l.State() != StateLoading || !l.session.CompareAndSwap(s, nil) {
				return
			}
			l.release(s)
			l.failAttempt(ErrLoadTimeout.Error())
		})
	})
	s.timer.Store(&t)
}

// show переводит блок в Showing и просит SDK показать креатив
func (l *Lifecycle) show() bool {
	s := l.session.Load()
	if !l.IsAdReady() || s == nil {
		return false
	}
	if !l.state.CompareAndSwap(int32(StateLoaded), int32(StateShowing)) {
		return false
	}
	if !s.ad.Show(l.ctx) {
		l.state.CompareAndSwap(int32(StateShowing), int32(StateLoaded))
		l.log.Warn("backend refused to show ad")
		return false
	}
	return true
}

// teardown освобождает объект SDK и сбрасывает блок в Idle
func (l *Lifecycle) teardown() {
	l.release(l.session.Swap(nil))
	// состояние сбрасывается раньше флагов: notifyLoaded сверяет его после записи флага
	l.setState(StateIdle)
	l.listener.Store(nil)
	l.hasLoadedCreative.Store(false)
	l.loadInFlight.Store(false)
	l.observe(TransitionDestroyed, "")
}

func (l *Lifecycle) release(s *session) {
	if s == nil {
		return
	}
	stopTimer(s)
	s.ad.Destroy()
}

func stopTimer(s *session) {
	if s == nil {
		return
	}
	if t := s.timer.Load(); t != nil {
		(*t).Stop()
	}
}

// moveFrom переводит блок в to, только если текущее состояние одно из from.
// Событие SDK вне таблицы переходов отбрасывается.
func (l *Lifecycle) moveFrom(to State, from ...State) bool {
	for _, st := range from {
		if l.state.CompareAndSwap(int32(st), int32(to)) {
			return true
		}
	}
	l.log.WithFields(logrus.Fields{
		"state": l.State().String(),
		"to":    to.String(),
	}).Debug("transition not allowed, backend event dropped")
	return false
}

func (l *Lifecycle) notifyLoaded() bool {
	if !l.moveFrom(StateLoaded, StateLoading) {
		return false
	}
	stopTimer(l.session.Load())
	l.hasLoadedCreative.Store(true)
	// teardown мог сбросить блок после перехода
	if l.State() != StateLoaded {
		l.hasLoadedCreative.Store(false)
		return false
	}
	l.loadInFlight.Store(false)
	l.observe(TransitionLoaded, "")
	l.dispatch(func(listener StatusListener) { listener.OnAdLoaded() })
	return true
}

// notifyFailed завершает попытку ошибкой независимо от состояния
func (l *Lifecycle) notifyFailed(reason string) {
	l.setState(StateFailed)
	l.failed(reason)
}

// failAttempt завершает ошибкой текущую загрузку или показ
func (l *Lifecycle) failAttempt(reason string) bool {
	if !l.moveFrom(StateFailed, StateLoading, StateShowing) {
		return false
	}
	l.failed(reason)
	return true
}

func (l *Lifecycle) failed(reason string) {
	stopTimer(l.session.Load())
	l.hasLoadedCreative.Store(false)
	l.loadInFlight.Store(false)
	l.log.WithField("reason", reason).Error("ad failed")
	l.observe(TransitionFailed, reason)
	l.dispatch(func(listener StatusListener) { listener.OnAdFailed(reason) })
}

func (l *Lifecycle) notifyShown() bool {
	if !l.moveFrom(StateShowing, StateLoaded, StateShowing) {
		return false
	}
	l.observe(TransitionShown, "")
	l.dispatch(func(listener StatusListener) { listener.OnAdShown() })
	return true
}

func (l *Lifecycle) notifyClosed() bool {
	if !l.moveFrom(StateClosed, StateShowing) {
		return false
	}
	l.observe(TransitionClosed, "")
	l.dispatch(func(listener StatusListener) { listener.OnAdClosed() })
	return true
}

// dispatch читает слушателя в момент исполнения на горутине диспетчера
func (l *Lifecycle) dispatch(notify func(StatusListener)) {
	l.env.Dispatcher.Run(func() {
		if ref := l.listener.Load(); ref != nil {
			notify(ref.l)
		}
	})
}

// dispatchExt доставляет событие расширенному слушателю категории
func dispatchExt[T any](l *Lifecycle, ext *atomic.Pointer[T], notify func(T)) {
	l.env.Dispatcher.Run(func() {
		if p := ext.Load(); p != nil {
			notify(*p)
		}
	})
}

func (l *Lifecycle) observe(kind TransitionKind, reason string) {
	if l.env.Observer == nil {
		return
	}
	l.env.Observer.Observe(Transition{
		UnitID:      l.id,
		Category:    l.category,
		PlacementID: l.placementID,
		Kind:        kind,
		State:       l.State(),
		Reason:      reason,
		At:          l.env.Clock.Now(),
	})
}
