package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shoppingcart/internal/db"
	"shoppingcart/internal/domain"
	"shoppingcart/internal/pricing"
	productrepo "shoppingcart/internal/repository/product"
	cartsvc "shoppingcart/internal/service/cart"
	productsvc "shoppingcart/internal/service/product"
)

func newTestRouter(t *testing.T, ready db.Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := productrepo.NewMemory(
		domain.Product{ID: "p-shirt", Key: "demo-shirt", SKU: "SKU-1", Name: "Demo T-Shirt", PriceCents: 1999, Currency: "USD"},
		domain.Product{ID: "p-mug", Key: "demo-mug", SKU: "SKU-2", Name: "Demo Mug", PriceCents: 1299, Currency: "USD"},
	)
	carts, err := cartsvc.New(catalog, pricing.NewListPrice(), cartsvc.Options{})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	router, err := buildRouter(zap.NewNop(), Deps{
		CartSvc:    carts,
		ProductSvc: productsvc.New(catalog),
		Ready:      ready,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var out cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode cart: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := do(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name  string
		ready db.Pinger
		want  int
	}{
		{name: "not configured", ready: nil, want: http.StatusServiceUnavailable},
		{name: "ping fails", ready: db.PingFunc(func(context.Context) error { return errors.New("down") }), want: http.StatusServiceUnavailable},
		{name: "ping ok", ready: db.PingFunc(func(context.Context) error { return nil }), want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, tc.ready)
			rec := do(t, router, http.MethodGet, "/readyz", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestCartLifecycle(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/carts", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	created := decodeCart(t, rec)
	if created.ID == "" || created.ItemCount != 0 || len(created.LineItems) != 0 {
		t.Fatalf("unexpected new cart: %+v", created)
	}
	base := "/carts/" + created.ID

	rec = do(t, router, http.MethodPost, base+"/items", `{"productId":"p-shirt","quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec = do(t, router, http.MethodPost, base+"/items", `{"productId":"p-mug","quantity":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", rec.Code)
	}
	rec = do(t, router, http.MethodPost, base+"/items", `{"productId":"p-shirt","quantity":1}`)
	cart := decodeCart(t, rec)
	if cart.ItemCount != 2 || cart.TotalLineItemQuantity != 4 {
		t.Fatalf("unexpected counts: %+v", cart)
	}
	if cart.TotalPrice.CentAmount != 3*1999+1299 || cart.TotalPrice.CurrencyCode != "USD" {
		t.Fatalf("unexpected total: %+v", cart.TotalPrice)
	}
	if cart.LineItems[0].ProductID != "p-shirt" || cart.LineItems[0].Quantity != 3 {
		t.Fatalf("unexpected first line: %+v", cart.LineItems[0])
	}

	rec = do(t, router, http.MethodDelete, base+"/items/p-shirt", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", rec.Code)
	}
	cart = decodeCart(t, rec)
	if cart.ItemCount != 1 || cart.TotalPrice.CentAmount != 1299 {
		t.Fatalf("unexpected cart after remove: %+v", cart)
	}

	rec = do(t, router, http.MethodDelete, base+"/items", "")
	cart = decodeCart(t, rec)
	if rec.Code != http.StatusOK || cart.ItemCount != 0 || cart.TotalPrice.CentAmount != 0 {
		t.Fatalf("unexpected clear result %d: %+v", rec.Code, cart)
	}

	rec = do(t, router, http.MethodGet, base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodDelete, base, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = do(t, router, http.MethodGet, base, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestCartErrors(t *testing.T) {
	router := newTestRouter(t, nil)
	created := decodeCart(t, do(t, router, http.MethodPost, "/carts", ""))
	base := "/carts/" + created.ID

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "unknown product", method: http.MethodPost, path: base + "/items", body: `{"productId":"nope","quantity":1}`, want: http.StatusNotFound},
		{name: "zero quantity", method: http.MethodPost, path: base + "/items", body: `{"productId":"p-mug","quantity":0}`, want: http.StatusBadRequest},
		{name: "negative quantity", method: http.MethodPost, path: base + "/items", body: `{"productId":"p-mug","quantity":-3}`, want: http.StatusBadRequest},
		{name: "missing product id", method: http.MethodPost, path: base + "/items", body: `{"quantity":1}`, want: http.StatusConflict},
		{name: "malformed body", method: http.MethodPost, path: base + "/items", body: `{"productId":`, want: http.StatusBadRequest},
		{name: "remove absent", method: http.MethodDelete, path: base + "/items/p-mug", want: http.StatusConflict},
		{name: "unknown cart", method: http.MethodPost, path: "/carts/missing/items", body: `{"productId":"p-mug","quantity":1}`, want: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
		})
	}

	cart := decodeCart(t, do(t, router, http.MethodGet, base, ""))
	if cart.ItemCount != 0 {
		t.Fatalf("failed operations must not change the cart: %+v", cart)
	}
}

func TestAddItemOverflowIsBadRequest(t *testing.T) {
	router := newTestRouter(t, nil)
	created := decodeCart(t, do(t, router, http.MethodPost, "/carts", ""))
	base := "/carts/" + created.ID

	rec := do(t, router, http.MethodPost, base+"/items", `{"productId":"p-mug","quantity":9223372036854775807}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first add: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec = do(t, router, http.MethodPost, base+"/items", `{"productId":"p-mug","quantity":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("overflowing add: expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get after overflow: expected 200, got %d", rec.Code)
	}
	cart := decodeCart(t, rec)
	if cart.ItemCount != 1 || cart.LineItems[0].Quantity != 9223372036854775807 {
		t.Fatalf("expected untouched line, got %+v", cart.LineItems)
	}
}

func TestProducts(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/products", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var page pagedProducts
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 2 || page.Results[0].Key != "demo-mug" {
		t.Fatalf("unexpected page: %+v", page)
	}

	rec = do(t, router, http.MethodGet, "/products/p-shirt", "")
	var p productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || p.Price.CentAmount != 1999 || p.Price.CurrencyCode != "USD" {
		t.Fatalf("unexpected product %d: %+v", rec.Code, p)
	}

	rec = do(t, router, http.MethodGet, "/products/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

type failingCarts struct {
	cartService
}

func (failingCarts) Create(context.Context) (*cartsvc.View, error) {
	return nil, errors.New("boom")
}

func TestInternalErrorIsMasked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(zap.NewNop(), Deps{
		CartSvc:    failingCarts{},
		ProductSvc: productsvc.New(productrepo.NewMemory()),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	rec := do(t, router, http.MethodPost, "/carts", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestBuildRouterRequiresServices(t *testing.T) {
	if _, err := buildRouter(zap.NewNop(), Deps{}); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func TestToCartResponseMixedCurrency(t *testing.T) {
	view := &cartsvc.View{
		ID: "c1",
		Lines: []cartsvc.Line{
			{ProductID: "a", Currency: "USD", Quantity: 1, LinePrice: 1},
			{ProductID: "b", Currency: "EUR", Quantity: 1, LinePrice: 2},
		},
		ItemCount:  2,
		TotalPrice: 3,
	}
	out := toCartResponse(view)
	if out.TotalPrice.CurrencyCode != "" || out.TotalPrice.CentAmount != 300 {
		t.Fatalf("unexpected total: %+v", out.TotalPrice)
	}
	if out.LineItems[0].Name != "a" {
		t.Fatalf("expected id fallback for name, got %q", out.LineItems[0].Name)
	}
}
