package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shoppingcart/internal/db"
	"shoppingcart/internal/domain"
	"shoppingcart/internal/logging"
	cartsvc "shoppingcart/internal/service/cart"
)

type cartService interface {
	Create(ctx context.Context) (*cartsvc.View, error)
	Get(ctx context.Context, cartID string) (*cartsvc.View, error)
	AddItem(ctx context.Context, cartID, productID string, quantity int) (*cartsvc.View, error)
	RemoveItem(ctx context.Context, cartID, productID string) (*cartsvc.View, error)
	Clear(ctx context.Context, cartID string) (*cartsvc.View, error)
	Delete(ctx context.Context, cartID string) error
}

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Deps are the collaborators the router needs.
type Deps struct {
	CartSvc     cartService
	ProductSvc  productService
	Ready       db.Pinger
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.ProductSvc == nil {
		return nil, errors.New("cart and product services are required")
	}

	router := gin.New()
	router.Use(logging.Gin(logger), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))

	h := &handlers{carts: deps.CartSvc, products: deps.ProductSvc, logger: logger}

	products := router.Group("/products")
	products.GET("", h.listProducts)
	products.GET("/:productId", h.getProduct)

	carts := router.Group("/carts")
	carts.POST("", h.createCart)
	carts.GET("/:cartId", h.getCart)
	carts.DELETE("/:cartId", h.deleteCart)
	carts.POST("/:cartId/items", h.addItem)
	carts.DELETE("/:cartId/items", h.clearCart)
	carts.DELETE("/:cartId/items/:productId", h.removeItem)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
