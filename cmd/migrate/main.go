package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"shoppingcart/internal/catalog"
	"shoppingcart/internal/config"
	"shoppingcart/internal/logging"
	"shoppingcart/internal/migrate"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger = logger.Named("migrate")

	if err := run(cfg, logger); err != nil {
		_ = logger.Sync()
		logger.Fatal("migrate failed", zap.Error(err))
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	store, err := catalog.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s catalog: %w", cfg.CatalogDriver, err)
	}
	defer store.Close()

	if store.Pool != nil {
		if err := migrate.Apply(ctx, store.Pool); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	logger.Info("migrations applied", zap.String("driver", store.Driver))
	return nil
}
