package config

import (
	"ad-mediation/internal/placement"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadFrom_File(t *testing.T) {
	dir := writeConfig(t, `
server:
  addr: ":9090"
prefs:
  kind: redis
  redis_addr: "cache:6379"
backend:
  kind: sim
  sim:
    auto: false
    load_latency: 250ms
    fail_placements: ["P-BAD"]
placements:
  banner:
    Home: "P-1"
  rewarded_video:
    bonus: "P-2"
timeouts:
  splash: 3s
kafka:
  brokers: "k1:9092, k2:9092"
  topic_events: ads
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "redis", cfg.Prefs.Kind)
	assert.Equal(t, "cache:6379", cfg.Prefs.RedisAddr)
	assert.False(t, cfg.Backend.Sim.Auto)
	assert.Equal(t, 250*time.Millisecond, cfg.Backend.Sim.LoadLatency)
	assert.Equal(t, []string{"P-BAD"}, cfg.Backend.Sim.FailPlacements)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers())
	assert.Equal(t, "ads", cfg.Kafka.TopicEvents)

	m, err := cfg.Mapping()
	require.NoError(t, err)
	assert.Equal(t, "P-1", m.Resolve(placement.CategoryBanner, "home"))
	assert.Equal(t, "P-2", m.Resolve(placement.CategoryRewardedVideo, "bonus"))

	timeouts, err := cfg.LoadTimeouts()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, timeouts[placement.CategorySplash])
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Prefs.Kind)
	assert.Equal(t, "sim", cfg.Backend.Kind)
	assert.True(t, cfg.Backend.Sim.Auto)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Empty(t, cfg.KafkaBrokers())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "env:9092")
	t.Setenv("KAFKA_TOPIC", "env-topic")
	t.Setenv("DB_URL", "postgres://env")
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("HTTP_BASE_URL", "http://ads.local")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"env:9092"}, cfg.KafkaBrokers())
	assert.Equal(t, "env-topic", cfg.Kafka.TopicEvents)
	assert.Equal(t, "postgres://env", cfg.Prefs.DBURL)
	assert.Equal(t, "env:6379", cfg.Prefs.RedisAddr)
	assert.Equal(t, "http://ads.local", cfg.HTTP.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown prefs kind", body: "prefs:\n  kind: disk\n"},
		{name: "unknown backend", body: "backend:\n  kind: grpc\n"},
		{name: "remote without base url", body: "backend:\n  kind: remote\n"},
		{name: "broken yaml", body: "log: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestConfig_InvalidCategoryNames(t *testing.T) {
	cfg := &Config{
		Placements: map[string]map[string]string{"popup": {"a": "b"}},
		Timeouts:   map[string]time.Duration{"popup": time.Second},
	}

	_, err := cfg.Mapping()
	assert.Error(t, err)
	_, err = cfg.LoadTimeouts()
	assert.Error(t, err)
}
