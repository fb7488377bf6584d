package main

import (
	"context"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/howl/internal/config"
	"github.com/davidbz/howl/internal/domain"
	"github.com/davidbz/howl/internal/http"
	"github.com/davidbz/howl/internal/http/middleware"
	ledgerredis "github.com/davidbz/howl/internal/ledger/redis"
	"github.com/davidbz/howl/internal/observability"
	"github.com/davidbz/howl/internal/transport/echo"
	"github.com/davidbz/howl/internal/transport/openai"
)

func main() {
	container := buildContainer()

	// Optional usage snapshot mirroring to Redis.
	err := container.Invoke(func(cfg *config.RedisConfig, client *domain.Client, logger *zap.Logger) {
		if cfg.Addr == "" {
			return
		}

		publisher := ledgerredis.NewPublisher(
			goredis.NewClient(&goredis.Options{Addr: cfg.Addr}),
			cfg.UsageKey,
		)
		interval := time.Duration(cfg.SnapshotInterval) * time.Second

		logger.Info("usage snapshot publishing enabled",
			zap.String("addr", cfg.Addr),
			zap.Duration("interval", interval),
		)

		go publisher.Run(context.Background(), interval, client.UsageStats)
	})
	if err != nil {
		log.Fatalf("Failed to start usage publisher: %v", err)
	}

	err = container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(func(cfg *config.ClientConfig) (*zap.Logger, error) {
		return observability.InitLogger(cfg.Debug)
	}); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func(logger *zap.Logger) domain.EventPublisher {
		return observability.NewEventBus(logger)
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Transport: OpenAI when an API key is configured, echo otherwise so the
	// service stays usable for local development.
	if err := container.Provide(func(cfg *openai.Config, logger *zap.Logger) (domain.Transport, error) {
		if cfg.APIKey == "" {
			logger.Warn("no OpenAI API key configured, falling back to echo transport")
			return echo.NewTransport(), nil
		}
		return openai.NewTransport(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide transport: %v", err)
	}

	// Completion client
	if err := container.Provide(func(
		transport domain.Transport,
		cfg *config.ClientConfig,
		logger *zap.Logger,
		events domain.EventPublisher,
	) (*domain.Client, error) {
		pricing := domain.PricingTable{
			PromptPerK:     cfg.PricePerKPrompt,
			CompletionPerK: cfg.PricePerKCompletion,
		}
		if pricing == (domain.PricingTable{}) {
			pricing = openai.PricingFor(cfg.Model)
		}

		return domain.NewClient(transport, domain.ClientConfig{
			Model:            cfg.Model,
			DefaultMaxTokens: cfg.DefaultMaxTokens,
			Pricing:          pricing,
			Logger:           logger,
			Events:           events,
		})
	}); err != nil {
		log.Fatalf("Failed to provide completion client: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
