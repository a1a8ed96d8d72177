package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound is returned when a product ID cannot be resolved by the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidOperation is returned when an operation does not apply to the current cart contents.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInvalidQuantity rejects non-positive quantities arriving from outside the process.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
