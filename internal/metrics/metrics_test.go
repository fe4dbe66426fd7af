package metrics

import (
	"testing"
	"time"

	"ad-mediation/internal/ad"
	"ad-mediation/internal/placement"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	for _, metric := range []prometheus.Collector{AdEventsTotal, AdLoadDuration, HTTPRequestsTotal} {
		desc := make(chan *prometheus.Desc, 1)
		metric.Describe(desc)
		close(desc)

		require.NotNil(t, <-desc, "metric should have a valid descriptor")
	}
}

func TestObserver_CountsTransitions(t *testing.T) {
	o := NewObserver()
	before := testutil.ToFloat64(AdEventsTotal.WithLabelValues("splash", "loading"))
	beforeFailed := testutil.ToFloat64(AdEventsTotal.WithLabelValues("splash", "failed"))

	start := time.Now()
	o.Observe(ad.Transition{UnitID: "m1", Category: placement.CategorySplash, Kind: ad.TransitionLoading, At: start})
	assert.Equal(t, 1, o.Pending())

	o.Observe(ad.Transition{UnitID: "m1", Category: placement.CategorySplash, Kind: ad.TransitionFailed, At: start.Add(5 * time.Second)})

	assert.Equal(t, before+1, testutil.ToFloat64(AdEventsTotal.WithLabelValues("splash", "loading")))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(AdEventsTotal.WithLabelValues("splash", "failed")))
	assert.Equal(t, 0, o.Pending())
	assert.Positive(t, testutil.CollectAndCount(AdLoadDuration))
}

func TestObserver_DestroyForgetsPendingLoad(t *testing.T) {
	o := NewObserver()

	o.Observe(ad.Transition{UnitID: "m2", Category: placement.CategoryBanner, Kind: ad.TransitionLoading, At: time.Now()})
	o.Observe(ad.Transition{UnitID: "m2", Category: placement.CategoryBanner, Kind: ad.TransitionDestroyed, At: time.Now()})

	assert.Equal(t, 0, o.Pending())
}

func TestObserver_LoadedWithoutStartIgnored(t *testing.T) {
	o := NewObserver()

	assert.NotPanics(t, func() {
		o.Observe(ad.Transition{UnitID: "m3", Category: placement.CategoryNative, Kind: ad.TransitionLoaded, At: time.Now()})
	})
	assert.Equal(t, 0, o.Pending())
}
