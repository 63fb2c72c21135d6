package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"clusterflow/internal/application/usecases"
	"clusterflow/internal/domain/repositories"
	"clusterflow/internal/infrastructure/config"
	"clusterflow/internal/infrastructure/exchanges"
	"clusterflow/internal/infrastructure/httpapi"
	"clusterflow/internal/infrastructure/sqlite"
)

// Container wires the process: one store opened at startup and closed at
// shutdown, one connector registry, and the use cases built on top of them.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Repositories
	TradeRepository repositories.TradeRepository

	// Connectors
	Sources *exchanges.Registry

	// Use Cases
	BackfillUseCase    *usecases.BackfillUseCase
	TopClustersUseCase *usecases.TopClustersUseCase

	// HTTP boundary
	Handler *httpapi.Handler

	// Infrastructure
	Store *sqlite.Store
}

func New(ctx context.Context) (*Container, error) {
	c := &Container{}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	c.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Setup database
	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	c.Store = store

	migrator := sqlite.NewMigrator(store.DB(), c.Logger)
	if err := migrator.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Setup repositories
	c.TradeRepository = sqlite.NewTradeRepository(store.DB())

	// Setup connectors
	c.Sources = exchanges.NewRegistry(
		exchanges.NewBinanceSource(cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Binance.UseTestnet, c.Logger),
		exchanges.NewOKXSource(c.Logger),
		exchanges.NewBybitSource(c.Logger),
	)

	// Setup use cases
	c.BackfillUseCase = usecases.NewBackfillUseCase(c.TradeRepository, c.Sources, c.Logger)
	c.TopClustersUseCase = usecases.NewTopClustersUseCase(c.TradeRepository, c.Logger)

	// Setup HTTP boundary
	c.Handler = httpapi.NewHandler(c.BackfillUseCase, c.TopClustersUseCase, c.Logger)

	return c, nil
}

func (c *Container) Shutdown() error {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}
	return nil
}
