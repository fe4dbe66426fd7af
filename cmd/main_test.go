package main

import (
	"ad-mediation/internal/config"
	"ad-mediation/internal/dispatch"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDispatcher_StopWaitsForLoop(t *testing.T) {
	d := dispatch.New(nil)
	stop := startDispatcher(context.Background(), d, nil)

	onLoop := make(chan bool, 1)
	d.Post(func() { onLoop <- d.OnLoop() })
	select {
	case v := <-onLoop:
		assert.True(t, v)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not run task")
	}

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}

	d.Post(func() {})
	assert.Zero(t, d.Pending())
}

func TestStartDispatcher_ParentCancelStopsLoop(t *testing.T) {
	d := dispatch.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stop := startDispatcher(ctx, d, nil)

	cancel()
	stop()
	assert.False(t, d.OnLoop())
}

func TestNewProvider_Kinds(t *testing.T) {
	cfg := &config.Config{Backend: config.BackendConfig{Kind: "sim"}}
	p, err := newProvider(cfg, nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)

	cfg.Backend.Kind = "ftp"
	_, err = newProvider(cfg, nil, nil, nil)
	assert.Error(t, err)
}
