package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	shopcart "shoppingcart/internal/cart"
	"shoppingcart/internal/domain"
)

const defaultMaxCarts = 10000

// Events receives a notification after every successful cart change.
type Events interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

// Options configures a Service. Zero values are usable.
type Options struct {
	MaxCarts int
	Events   Events
	Logger   *zap.Logger
}

// Service keeps live carts in memory. Each cart is guarded by its own mutex;
// the least recently used cart is dropped once MaxCarts is reached.
type Service struct {
	sessions *lru.Cache[string, *session]
	catalog  shopcart.ProductCatalog
	pricing  shopcart.PricingService
	events   Events
	logger   *zap.Logger
	now      func() time.Time
}

type session struct {
	mu        sync.Mutex
	id        string
	cart      *shopcart.ShoppingCart
	createdAt time.Time
}

// New returns a Service. catalog and pricing are required.
func New(catalog shopcart.ProductCatalog, pricing shopcart.PricingService, opts Options) (*Service, error) {
	if catalog == nil || pricing == nil {
		return nil, errors.New("catalog and pricing are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("cart_service")
	size := opts.MaxCarts
	if size <= 0 {
		size = defaultMaxCarts
	}
	sessions, err := lru.NewWithEvict(size, func(id string, _ *session) {
		logger.Info("cart session dropped", zap.String("cart_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("cart sessions: %w", err)
	}
	return &Service{
		sessions: sessions,
		catalog:  catalog,
		pricing:  pricing,
		events:   opts.Events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Line is one cart line as seen by API clients.
type Line struct {
	ProductID string  `json:"productId"`
	Key       string  `json:"productKey,omitempty"`
	SKU       string  `json:"sku,omitempty"`
	Name      string  `json:"name"`
	Currency  string  `json:"currency,omitempty"`
	Quantity  int     `json:"quantity"`
	LinePrice float64 `json:"linePrice"`
}

// View is a point-in-time snapshot of a cart.
type View struct {
	ID            string    `json:"id"`
	Lines         []Line    `json:"lineItems"`
	ItemCount     int       `json:"itemCount"`
	TotalQuantity int       `json:"totalQuantity"`
	TotalPrice    float64   `json:"totalPrice"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Create starts an empty cart under a new ID.
func (s *Service) Create(ctx context.Context) (*View, error) {
	sess := &session{
		id:        uuid.NewString(),
		cart:      shopcart.New(s.pricing, s.catalog),
		createdAt: s.now(),
	}
	s.sessions.Add(sess.id, sess)
	s.logger.Info("cart created", zap.String("cart_id", sess.id))

	view := s.snapshot(sess)
	s.publish(ctx, domain.EventCartCreated, domain.CartEvent{CartID: sess.id})
	return view, nil
}

// Get returns a snapshot of the cart.
func (s *Service) Get(_ context.Context, cartID string) (*View, error) {
	sess, err := s.lookup(cartID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshot(sess), nil
}

// AddItem adds quantity units of productID. Input is validated here so that
// the cart's own precondition panics are never reached from outside; a
// quantity that would overflow the line yields domain.ErrInvalidQuantity.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, quantity int) (*View, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("product id required: %w", domain.ErrInvalidOperation)
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	sess, err := s.lookup(cartID)
	if err != nil {
		return nil, err
	}

	view, err := s.withSession(sess, func() error {
		if item, ok := sess.cart.Item(productID); ok && !item.CanIncrease(quantity) {
			return fmt.Errorf("product %q already has %d units: %w", productID, item.Quantity(), domain.ErrInvalidQuantity)
		}
		return sess.cart.AddItem(ctx, productID, quantity)
	})
	if err != nil {
		s.logger.Info("add item rejected", zap.String("cart_id", cartID), zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("item added", zap.String("cart_id", cartID), zap.String("product_id", productID), zap.Int("quantity", quantity))
	s.publish(ctx, domain.EventCartItemAdded, domain.CartEvent{CartID: cartID, ProductID: productID, Quantity: quantity, ItemCount: view.ItemCount})
	return view, nil
}

// RemoveItem drops the whole line for productID.
func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*View, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("product id required: %w", domain.ErrInvalidOperation)
	}
	sess, err := s.lookup(cartID)
	if err != nil {
		return nil, err
	}

	view, err := s.withSession(sess, func() error {
		return sess.cart.RemoveItem(productID)
	})
	if err != nil {
		s.logger.Info("remove item rejected", zap.String("cart_id", cartID), zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("item removed", zap.String("cart_id", cartID), zap.String("product_id", productID))
	s.publish(ctx, domain.EventCartItemRemoved, domain.CartEvent{CartID: cartID, ProductID: productID, ItemCount: view.ItemCount})
	return view, nil
}

// Clear empties the cart but keeps the session.
func (s *Service) Clear(ctx context.Context, cartID string) (*View, error) {
	sess, err := s.lookup(cartID)
	if err != nil {
		return nil, err
	}

	view, _ := s.withSession(sess, func() error {
		sess.cart.Clear()
		return nil
	})

	s.logger.Info("cart cleared", zap.String("cart_id", cartID))
	s.publish(ctx, domain.EventCartCleared, domain.CartEvent{CartID: cartID})
	return view, nil
}

// Delete drops the session.
func (s *Service) Delete(ctx context.Context, cartID string) error {
	if _, err := s.lookup(cartID); err != nil {
		return err
	}
	s.sessions.Remove(cartID)
	s.logger.Info("cart deleted", zap.String("cart_id", cartID))
	s.publish(ctx, domain.EventCartDeleted, domain.CartEvent{CartID: cartID})
	return nil
}

// Len reports the number of live carts.
func (s *Service) Len() int {
	return s.sessions.Len()
}

func (s *Service) lookup(cartID string) (*session, error) {
	sess, ok := s.sessions.Get(cartID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// withSession runs fn under the session lock and snapshots the cart when fn
// succeeds. The lock is released even if fn or pricing panics.
func (s *Service) withSession(sess *session, fn func() error) (*View, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(); err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// snapshot must be called with sess.mu held.
func (s *Service) snapshot(sess *session) *View {
	items := sess.cart.Items()
	view := &View{
		ID:            sess.id,
		Lines:         make([]Line, 0, len(items)),
		ItemCount:     sess.cart.ItemCount(),
		TotalQuantity: sess.cart.TotalQuantity(),
		TotalPrice:    sess.cart.TotalPrice(),
		CreatedAt:     sess.createdAt,
	}
	for _, item := range items {
		p := item.Product()
		view.Lines = append(view.Lines, Line{
			ProductID: p.ID,
			Key:       p.Key,
			SKU:       p.SKU,
			Name:      p.Name,
			Currency:  p.Currency,
			Quantity:  item.Quantity(),
			LinePrice: s.pricing.CalculateItemPrice(item),
		})
	}
	return view
}

func (s *Service) publish(ctx context.Context, key string, event domain.CartEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("routing_key", key), zap.String("cart_id", event.CartID), zap.Error(err))
	}
}
