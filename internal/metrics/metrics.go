package metrics

import (
	"sync"
	"time"

	"ad-mediation/internal/ad"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdEventsTotal считает смены состояний по категории и типу
	AdEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ad_lifecycle_events_total",
			Help: "Ad unit lifecycle transitions by category and event",
		},
		[]string{"category", "event"},
	)

	// AdLoadDuration - время от начала загрузки до результата
	AdLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ad_load_duration_seconds",
			Help:    "Time from load start to loaded or failed, in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"category", "result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ad_api_requests_total",
			Help: "API requests by route and status code",
		},
		[]string{"route", "status"},
	)
)

// Observer переводит смены состояний блоков в метрики
type Observer struct {
	mu      sync.Mutex
	started map[string]time.Time
}

var _ ad.Observer = (*Observer)(nil)

func NewObserver() *Observer {
	return &Observer{started: make(map[string]time.Time)}
}

func (o *Observer) Observe(t ad.Transition) {
	category := t.Category.String()
	AdEventsTotal.WithLabelValues(category, string(t.Kind)).Inc()

	o.mu.Lock()
	defer o.mu.Unlock()
	switch t.Kind {
	case ad.TransitionLoading:
		o.started[t.UnitID] = t.At
	case ad.TransitionLoaded, ad.TransitionFailed:
		start, ok := o.started[t.UnitID]
		if !ok {
			return
		}
		delete(o.started, t.UnitID)
		AdLoadDuration.WithLabelValues(category, string(t.Kind)).Observe(t.At.Sub(start).Seconds())
	case ad.TransitionDestroyed:
		delete(o.started, t.UnitID)
	}
}

// Pending - число блоков с незавершенной загрузкой
func (o *Observer) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.started)
}
