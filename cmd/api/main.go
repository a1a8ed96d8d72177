package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shoppingcart/internal/catalog"
	"shoppingcart/internal/config"
	"shoppingcart/internal/events"
	"shoppingcart/internal/httpserver"
	"shoppingcart/internal/logging"
	"shoppingcart/internal/pricing"
	productrepo "shoppingcart/internal/repository/product"
	cartsvc "shoppingcart/internal/service/cart"
	productsvc "shoppingcart/internal/service/product"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger = logger.Named("api")
	gin.SetMode(gin.ReleaseMode)

	if err := run(cfg, logger); err != nil {
		_ = logger.Sync()
		logger.Fatal("api stopped", zap.Error(err))
	}
	_ = logger.Sync()
}

// run closes everything it opens before returning.
func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	store, err := catalog.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s catalog: %w", cfg.CatalogDriver, err)
	}
	defer store.Close()

	products, err := productrepo.NewCached(store.Repo, cfg.CatalogCacheSize)
	if err != nil {
		return fmt.Errorf("init catalog cache: %w", err)
	}

	publisher, err := events.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer publisher.Close()

	opts := cartsvc.Options{MaxCarts: cfg.MaxCarts, Logger: logger}
	if publisher != nil {
		opts.Events = publisher
	}
	cartService, err := cartsvc.New(products, pricing.NewListPrice(), opts)
	if err != nil {
		return fmt.Errorf("init cart service: %w", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		CartSvc:     cartService,
		ProductSvc:  productsvc.New(products),
		Ready:       store.Ready,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("catalog", store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
	return runErr
}
