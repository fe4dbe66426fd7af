// Package sim is an in-process ad SDK. In auto mode it answers loads and
// shows on timers; in manual mode tests drive it through Emit.
package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Auto         bool
	LoadLatency  time.Duration
	ShowDuration time.Duration
	NetworkID    int
	// FailPlacements - площадки, загрузка которых всегда завершается ошибкой
	FailPlacements []string
}

type Provider struct {
	cfg   Config
	clock clockwork.Clock
	log   logrus.FieldLogger

	mu  sync.Mutex
	ads []*Ad
}

var _ backend.Provider = (*Provider)(nil)

func NewProvider(cfg Config, clock clockwork.Clock, log logrus.FieldLogger) *Provider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{cfg: cfg, clock: clock, log: log.WithField("component", "sim")}
}

func (p *Provider) NewAd(category placement.Category, placementID string) (backend.Ad, error) {
	ad := &Ad{
		provider:    p,
		category:    category,
		placementID: placementID,
	}
	p.mu.Lock()
	p.ads = append(p.ads, ad)
	p.mu.Unlock()
	return ad, nil
}

// Ads возвращает все созданные объекты в порядке создания
func (p *Provider) Ads() []*Ad {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Ad, len(p.ads))
	copy(out, p.ads)
	return out
}

// Last возвращает последний созданный объект или nil
func (p *Provider) Last() *Ad {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ads) == 0 {
		return nil
	}
	return p.ads[len(p.ads)-1]
}

func (p *Provider) failing(placementID string) bool {
	for _, id := range p.cfg.FailPlacements {
		if id == placementID {
			return true
		}
	}
	return false
}

type Ad struct {
	provider    *Provider
	category    placement.Category
	placementID string

	mu       sync.Mutex
	listener backend.Listener

	loads     atomic.Int32
	shows     atomic.Int32
	destroyed atomic.Bool
}

var _ backend.Ad = (*Ad)(nil)

func (a *Ad) SetListener(l backend.Listener) {
	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()
}

func (a *Ad) Load() {
	a.loads.Add(1)
	if !a.provider.cfg.Auto {
		return
	}
	p := a.provider
	p.clock.AfterFunc(p.cfg.LoadLatency, func() {
		if p.failing(a.placementID) {
			a.Emit(backend.Event{Kind: backend.EventLoadFailed, Err: &backend.Error{Code: "4001", Desc: "no fill"}})
			return
		}
		a.Emit(backend.Event{Kind: backend.EventLoaded})
	})
}

func (a *Ad) Show(ctx context.Context) bool {
	if a.destroyed.Load() || ctx == nil || ctx.Err() != nil {
		return false
	}
	a.shows.Add(1)
	if !a.provider.cfg.Auto {
		return true
	}
	p := a.provider
	info := backend.Info{NetworkFirmID: p.cfg.NetworkID, AdsourceID: a.placementID}
	go func() {
		a.Emit(backend.Event{Kind: backend.EventShown, Info: info})
		if a.category == placement.CategoryRewardedVideo {
			a.Emit(backend.Event{Kind: backend.EventRewarded, Info: info})
		}
	}()
	p.clock.AfterFunc(p.cfg.ShowDuration, func() {
		if a.category == placement.CategoryRewardedVideo {
			a.Emit(backend.Event{Kind: backend.EventPlayEnd, Info: info})
		}
		a.Emit(backend.Event{Kind: backend.EventClosed, Info: info, Dismiss: backend.DismissTimeOver})
	})
	return true
}

// Destroy помечает объект уничтоженным. Слушатель не отключается:
// как и настоящие SDK, объект может прислать запоздалые события.
func (a *Ad) Destroy() {
	a.destroyed.Store(true)
}

// Emit доставляет событие слушателю на вызывающей горутине
func (a *Ad) Emit(ev backend.Event) {
	a.mu.Lock()
	l := a.listener
	a.mu.Unlock()
	if l == nil {
		a.provider.log.WithField("event", ev.Kind).Debug("event without listener")
		return
	}
	l(ev)
}

func (a *Ad) Category() placement.Category { return a.category }
func (a *Ad) PlacementID() string           { return a.placementID }
func (a *Ad) Loads() int                    { return int(a.loads.Load()) }
func (a *Ad) Shows() int                    { return int(a.shows.Load()) }
func (a *Ad) Destroyed() bool               { return a.destroyed.Load() }
