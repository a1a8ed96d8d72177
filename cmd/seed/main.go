package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"shoppingcart/internal/catalog"
	"shoppingcart/internal/config"
	"shoppingcart/internal/logging"
	"shoppingcart/internal/seed"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger = logger.Named("seed")

	if err := run(cfg, logger); err != nil {
		_ = logger.Sync()
		logger.Fatal("seed failed", zap.Error(err))
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

	if err := seed.Apply(ctx, store.Repo); err != nil {
		return fmt.Errorf("seed apply: %w", err)
	}

	logger.Info("seed applied", zap.String("driver", store.Driver), zap.Int("products", len(seed.Products())))
	return nil
}
