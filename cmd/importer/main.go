package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"shoppingcart/internal/catalog"
	"shoppingcart/internal/config"
	"shoppingcart/internal/importer"
	"shoppingcart/internal/logging"
)

func main() {
	var (
		filePath string
		currency string
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV export")
	flag.StringVar(&currency, "currency", "", "Currency for rows that do not name one")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger = logger.Named("importer")

	if err := run(cfg, logger, filePath, currency); err != nil {
		_ = logger.Sync()
		logger.Fatal("import failed", zap.String("file", filePath), zap.Error(err))
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *zap.Logger, filePath, currency string) error {
	ctx := context.Background()
	store, err := catalog.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s catalog: %w", cfg.CatalogDriver, err)
	}
	defer store.Close()

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, store.Repo, currency)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("imported %d before failing: %w", count, err)
	}

	fmt.Printf("Imported %d products into %s catalog in %s\n", count, store.Driver, time.Since(start).Truncate(time.Millisecond))
	return nil
}
