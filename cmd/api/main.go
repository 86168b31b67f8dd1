// Command api serves the habit tracker HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/habits/internal/api"
	"example.com/habits/internal/auth"
	"example.com/habits/internal/config"
	"example.com/habits/internal/domain"
	"example.com/habits/internal/logger"
	"example.com/habits/internal/outbox"
	httptransport "example.com/habits/internal/transport/http"
)

// Run wires the service from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := buildRepository(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("closing habit store", zap.Error(err))
		}
	}()

	publisher, closePublisher := buildPublisher(cfg, log)
	defer closePublisher()

	service := domain.NewService(store,
		domain.WithLocation(loc),
		domain.WithPublisher(publisher),
		domain.WithLogger(log.Named("service")),
	)

	routerCfg := api.RouterConfig{
		AllowedOrigin: cfg.CORSAllowedOrigin,
		Metrics:       promhttp.Handler(),
		Logger:        log.Named("http"),
	}
	if cfg.AuthEnabled {
		routerCfg.Auth = &auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}
	}
	router := api.NewRouter(api.NewHandler(service, log.Named("api")), routerCfg)

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), router)
	log.Info("habit api starting",
		zap.String("store", cfg.Store),
		zap.String("timezone", loc.String()),
		zap.Bool("events", cfg.EventsEnabled),
		zap.Bool("auth", cfg.AuthEnabled),
	)
	return httptransport.Run(ctx, server, log, cfg.ShutdownTimeout)
}

func buildPublisher(cfg config.Config, log *zap.Logger) (outbox.Publisher, func()) {
	if !cfg.EventsEnabled {
		return outbox.NoopPublisher{}, func() {}
	}

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers, 0)
	var registry *outbox.SchemaRegistryClient
	if cfg.SchemaRegistryURL != "" {
		registry = outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL, 0)
	}
	log.Info("publishing habit events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.HabitEventsTopic),
		zap.Bool("schema_registry", registry != nil),
	)

	// Pass an untyped nil when unset; a nil *SchemaRegistryClient is a non-nil interface.
	var publisher *outbox.KafkaPublisher
	if registry != nil {
		publisher = outbox.NewKafkaPublisher(producer, registry, cfg.HabitEventsTopic)
	} else {
		publisher = outbox.NewKafkaPublisher(producer, nil, cfg.HabitEventsTopic)
	}
	return publisher, func() {
		if err := producer.Close(); err != nil {
			log.Warn("closing kafka producer", zap.Error(err))
		}
	}
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("habit api stopped", zap.Error(err))
		os.Exit(1)
	}
}
