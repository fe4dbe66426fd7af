package main

import (
	"ad-mediation/internal/ad"
	"ad-mediation/internal/api"
	"ad-mediation/internal/app"
	"ad-mediation/internal/backend"
	"ad-mediation/internal/backend/remote"
	"ad-mediation/internal/backend/sim"
	"ad-mediation/internal/config"
	"ad-mediation/internal/dispatch"
	"ad-mediation/internal/httpclient"
	"ad-mediation/internal/kafka"
	"ad-mediation/internal/logging"
	"ad-mediation/internal/metrics"
	"ad-mediation/internal/prefs"
	"ad-mediation/internal/prefs/postgres"
	"ad-mediation/internal/prefs/redis"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("service failed")
	}
	logger.Info("Server exited")
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Горутина диспетчера: все уведомления блоков исполняются на ней
	dispatcher := dispatch.New(logger)
	stopDispatcher := startDispatcher(ctx, dispatcher, logger)
	defer stopDispatcher()

	// Хранилище токена должно быть готово до первого HTTP запроса
	tokens, err := openPrefs(ctx, cfg.Prefs)
	if err != nil {
		return err
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			logger.WithError(err).Warn("error closing token store")
		}
	}()

	client := httpclient.New(httpclient.Config{
		BaseURL: cfg.HTTP.BaseURL,
		Timeout: cfg.HTTP.Timeout,
	}, tokens, dispatcher, logger)

	clock := clockwork.NewRealClock()
	provider, err := newProvider(cfg, client, clock, logger)
	if err != nil {
		return err
	}

	mapping, err := cfg.Mapping()
	if err != nil {
		return err
	}
	timeouts, err := cfg.LoadTimeouts()
	if err != nil {
		return err
	}

	observers := ad.Observers{metrics.NewObserver()}

	// Создание продюсера Kafka
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		producer := kafka.NewProducer(kafka.NewWriter(brokers, cfg.Kafka.TopicEvents), logger)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.WithError(err).Warn("error closing producer")
			}
		}()
		observers = append(observers, producer)
	} else {
		logger.Info("Kafka brokers not configured, event journal disabled")
	}

	mediator := app.NewMediator(ctx, ad.Env{
		Resolver:     mapping,
		Provider:     provider,
		Dispatcher:   dispatcher,
		Clock:        clock,
		Log:          logger,
		Observer:     observers,
		LoadTimeouts: timeouts,
	}, tokens, logger)
	defer mediator.Close()

	// Создание и запуск API сервера
	apiServer := api.NewServer(mediator, logger)
	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Server.Addr).Info("Starting API server")
		if err := apiServer.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Ожидание сигнала завершения
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("api server failed: %w", err)
	}
	logger.Info("Shutting down..")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("API server shutdown error")
	}
	return nil
}

// startDispatcher запускает цикл диспетчера; stop останавливает его и дожидается выхода
func startDispatcher(ctx context.Context, d *dispatch.Dispatcher, logger logrus.FieldLogger) (stop func()) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg conc.WaitGroup
	wg.Go(func() {
		if err := d.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("dispatcher stopped")
		}
	})
	return func() {
		cancel()
		wg.Wait()
	}
}

func openPrefs(ctx context.Context, cfg config.PrefsConfig) (prefs.Store, error) {
	switch cfg.Kind {
	case "redis":
		store, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := postgres.New(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return prefs.NewMemory(), nil
	}
}

func newProvider(cfg *config.Config, client *httpclient.Client, clock clockwork.Clock, logger logrus.FieldLogger) (backend.Provider, error) {
	switch cfg.Backend.Kind {
	case "remote":
		return remote.NewProvider(client, clock, logger), nil
	case "sim":
		s := cfg.Backend.Sim
		return sim.NewProvider(sim.Config{
			Auto:           s.Auto,
			LoadLatency:    s.LoadLatency,
			ShowDuration:   s.ShowDuration,
			NetworkID:      s.NetworkID,
			FailPlacements: s.FailPlacements,
		}, clock, logger), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
	}
}
