package config

import (
	"ad-mediation/internal/placement"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var DefaultPaths = []string{"./configs", "/etc/ad-mediation/"}

type Config struct {
	Log        LogConfig                    `mapstructure:"log"`
	Server     ServerConfig                 `mapstructure:"server"`
	HTTP       HTTPConfig                   `mapstructure:"http"`
	Prefs      PrefsConfig                  `mapstructure:"prefs"`
	Backend    BackendConfig                `mapstructure:"backend"`
	Placements map[string]map[string]string `mapstructure:"placements"`
	Timeouts   map[string]time.Duration     `mapstructure:"timeouts"`
	Kafka      KafkaConfig                  `mapstructure:"kafka"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type HTTPConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PrefsConfig - хранилище токена: memory, redis или postgres
type PrefsConfig struct {
	Kind          string `mapstructure:"kind"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	DBURL         string `mapstructure:"db_url"`
}

// BackendConfig - источник рекламы: sim или remote
type BackendConfig struct {
	Kind string    `mapstructure:"kind"`
	Sim  SimConfig `mapstructure:"sim"`
}

type SimConfig struct {
	Auto           bool          `mapstructure:"auto"`
	LoadLatency    time.Duration `mapstructure:"load_latency"`
	ShowDuration   time.Duration `mapstructure:"show_duration"`
	NetworkID      int           `mapstructure:"network_id"`
	FailPlacements []string      `mapstructure:"fail_placements"`
}

type KafkaConfig struct {
	Brokers     string `mapstructure:"brokers"`
	TopicEvents string `mapstructure:"topic_events"`
}

// Load читает config.yaml из стандартных каталогов
func Load() (*Config, error) {
	return LoadFrom(DefaultPaths...)
}

// LoadFrom читает config.yaml из указанных каталогов. Без файла используются значения по умолчанию.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Переопределение переменными окружения
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = brokers
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		cfg.Kafka.TopicEvents = topic
	}
	if dbURL := os.Getenv("DB_URL"); dbURL != "" {
		cfg.Prefs.DBURL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Prefs.RedisAddr = addr
	}
	if baseURL := os.Getenv("HTTP_BASE_URL"); baseURL != "" {
		cfg.HTTP.BaseURL = baseURL
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("prefs.kind", "memory")
	v.SetDefault("backend.kind", "sim")
	v.SetDefault("backend.sim.auto", true)
	v.SetDefault("backend.sim.load_latency", 500*time.Millisecond)
	v.SetDefault("backend.sim.show_duration", 3*time.Second)
	v.SetDefault("kafka.topic_events", "ad-events")
}

func (c *Config) validate() error {
	switch c.Prefs.Kind {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown prefs kind %q", c.Prefs.Kind)
	}
	switch c.Backend.Kind {
	case "sim":
	case "remote":
		if c.HTTP.BaseURL == "" {
			return errors.New("remote backend requires http.base_url")
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
	return nil
}

// Mapping возвращает таблицу площадок. Ключи приводятся viper к нижнему регистру.
func (c *Config) Mapping() (placement.Mapping, error) {
	m, err := placement.FromNames(c.Placements)
	if err != nil {
		return nil, fmt.Errorf("invalid placements: %w", err)
	}
	return m, nil
}

// LoadTimeouts возвращает ограничения времени загрузки по категориям
func (c *Config) LoadTimeouts() (map[placement.Category]time.Duration, error) {
	out := make(map[placement.Category]time.Duration, len(c.Timeouts))
	for name, d := range c.Timeouts {
		category, err := placement.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("invalid timeouts: %w", err)
		}
		out[category] = d
	}
	return out, nil
}

// KafkaBrokers разбирает список брокеров через запятую
func (c *Config) KafkaBrokers() []string {
	var out []string
	for _, b := range strings.Split(c.Kafka.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
