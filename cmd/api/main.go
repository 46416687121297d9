package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agendador/internal/api"
	"agendador/internal/config"
	"agendador/internal/database"
	"agendador/internal/domain"
	"agendador/internal/events"
	"agendador/internal/export"
	"agendador/internal/logging"
	"agendador/internal/metrics"
	"agendador/internal/repository"
	"agendador/internal/service"
	"agendador/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	bookingStore, userStore, dbCloser, err := initStores(cfg, redisClient, &logger)
	if err != nil {
		return err
	}
	if dbCloser != nil {
		defer (func() { _ = dbCloser.Close() })()
	}

	sessionTTL := time.Duration(cfg.Auth.SessionTTLSeconds) * time.Second
	var sessions domain.SessionStore
	if redisClient != nil {
		sessions = repository.NewRedisSessionStore(redisClient, sessionTTL)
	} else {
		sessions = repository.NewMemorySessionStore(sessionTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus()
	startKafkaRelay(ctx, cfg, bus, &logger)

	rooms := service.NewRoomService(cfg.Rooms)
	bookings := service.NewBookingService(bookingStore, rooms, bus, cfg.Storage.AtomicCreate, &logger)
	auth := service.NewAuthService(userStore, sessions, &logger)

	if err := service.SeedUsers(ctx, userStore, cfg.DemoUsers, &logger); err != nil {
		return fmt.Errorf("seed demo users: %w", err)
	}

	exporter := export.NewExporter(bookingStore, rooms, &logger)
	server := api.NewServer(cfg.Server, bookings, rooms, auth, sessions, exporter, &logger)

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, server, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initStores wires the booking and user stores for the configured backend.
// The snapshot backend keeps the whole collection under one Redis key and
// falls back to process memory when Redis goes away.
func initStores(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) (domain.BookingStore, domain.UserStore, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.NewDB(cfg.Storage.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Storage.Path).Msg("init database")
			return nil, nil, nil, err
		}
		return db, db, db, nil

	case config.BackendSnapshot:
		memory := repository.NewMemoryBookingStore()
		if redisClient == nil {
			logger.Warn().Msg("snapshot backend configured without redis, using memory store")
			return memory, repository.NewMemoryUserStore(), nil, nil
		}
		primary := repository.NewRedisBookingStore(redisClient)
		store := repository.NewFailoverBookingStore(primary, memory, logger)
		return store, repository.NewMemoryUserStore(), nil, nil

	case config.BackendMemory:
		return repository.NewMemoryBookingStore(), repository.NewMemoryUserStore(), nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

func startKafkaRelay(ctx context.Context, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Events.KafkaEnabled {
		return
	}

	writer := events.NewKafkaWriter(cfg.Events)
	publisher := events.NewKafkaPublisher(writer, logger)
	relay := worker.NewEventRelay(publisher, worker.RetryPolicy{}, logger)

	bus.SubscribeAll(relay.Handler())

	go func() {
		relay.Run(ctx)
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("close kafka publisher")
		}
	}()

	logger.Info().Strs("brokers", cfg.Events.Brokers).Str("topic", cfg.Events.Topic).Msg("kafka relay started")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("metrics server started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

func serve(ctx context.Context, server *api.Server, logger *zerolog.Logger) error {
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info().Msg("API server stopped")
	return nil
}
