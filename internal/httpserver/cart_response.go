package httpserver

import (
	"time"

	"shoppingcart/internal/domain"
	"shoppingcart/internal/pricing"
	cartsvc "shoppingcart/internal/service/cart"
)

type cartResponse struct {
	Type                  string             `json:"type"`
	ID                    string             `json:"id"`
	CreatedAt             time.Time          `json:"createdAt"`
	LineItems             []lineItemResponse `json:"lineItems"`
	ItemCount             int                `json:"itemCount"`
	TotalLineItemQuantity int                `json:"totalLineItemQuantity"`
	TotalPrice            priceValue         `json:"totalPrice"`
}

type lineItemResponse struct {
	ProductID  string     `json:"productId"`
	ProductKey string     `json:"productKey,omitempty"`
	SKU        string     `json:"sku,omitempty"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	TotalPrice priceValue `json:"totalPrice"`
}

type priceValue struct {
	Type           string  `json:"type"`
	CurrencyCode   string  `json:"currencyCode,omitempty"`
	CentAmount     int64   `json:"centAmount"`
	FractionDigits int     `json:"fractionDigits"`
	Amount         float64 `json:"amount"`
}

func newPriceValue(amount float64, currency string) priceValue {
	return priceValue{
		Type:           "centPrecision",
		CurrencyCode:   currency,
		CentAmount:     pricing.Cents(amount),
		FractionDigits: 2,
		Amount:         amount,
	}
}

func toCartResponse(view *cartsvc.View) cartResponse {
	lines := make([]lineItemResponse, 0, len(view.Lines))
	currency := ""
	mixed := false
	for i, line := range view.Lines {
		name := line.Name
		if name == "" {
			name = line.Key
		}
		if name == "" {
			name = line.ProductID
		}
		if i == 0 {
			currency = line.Currency
		} else if line.Currency != currency {
			mixed = true
		}
		lines = append(lines, lineItemResponse{
			ProductID:  line.ProductID,
			ProductKey: line.Key,
			SKU:        line.SKU,
			Name:       name,
			Quantity:   line.Quantity,
			TotalPrice: newPriceValue(line.LinePrice, line.Currency),
		})
	}
	// A total across currencies has no single code.
	if mixed {
		currency = ""
	}

	return cartResponse{
		Type:                  "Cart",
		ID:                    view.ID,
		CreatedAt:             view.CreatedAt,
		LineItems:             lines,
		ItemCount:             view.ItemCount,
		TotalLineItemQuantity: view.TotalQuantity,
		TotalPrice:            newPriceValue(view.TotalPrice, currency),
	}
}

type productResponse struct {
	Type        string                 `json:"type"`
	ID          string                 `json:"id"`
	Key         string                 `json:"key,omitempty"`
	SKU         string                 `json:"sku,omitempty"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Price       priceValue             `json:"price"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		Type:        "Product",
		ID:          p.ID,
		Key:         p.Key,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price: priceValue{
			Type:           "centPrecision",
			CurrencyCode:   p.Currency,
			CentAmount:     p.PriceCents,
			FractionDigits: 2,
			Amount:         float64(p.PriceCents) / 100,
		},
		Attributes: p.Attributes,
		CreatedAt:  p.CreatedAt,
	}
}

type pagedProducts struct {
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	Count   int               `json:"count"`
	Total   int               `json:"total"`
	Results []productResponse `json:"results"`
}
