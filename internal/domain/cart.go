package domain

// CartEvent is published whenever a cart session changes.
type CartEvent struct {
	CartID    string `json:"cartId"`
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	ItemCount int    `json:"itemCount"`
}

// Routing keys for CartEvent.
const (
	EventCartCreated     = "cart.created"
	EventCartItemAdded   = "cart.item.added"
	EventCartItemRemoved = "cart.item.removed"
	EventCartCleared     = "cart.cleared"
	EventCartDeleted     = "cart.deleted"
)
