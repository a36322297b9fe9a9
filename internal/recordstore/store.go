// Package recordstore provides access to the external record store that owns product data.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any record store answer meaning "no such product".
var ErrNotFound = errors.New("record not found")

// Product is the record store representation of a product.
type Product struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       float64 `json:"stock"`
}

// Store is the record store capability the gateway depends on.
// It abstracts the underlying store, allowing for different implementations (e.g., in-memory, HTTP).
type Store interface {
	// List returns the whole products collection.
	List(ctx context.Context) ([]Product, error)

	// Get returns a single product.
	// Returns an error matching ErrNotFound if no product exists with the given ID.
	Get(ctx context.Context, id int) (*Product, error)

	// Post writes a new product and returns the stored representation.
	Post(ctx context.Context, product Product) (*Product, error)

	// Patch writes product over the existing record with the same ID.
	// Returns an error matching ErrNotFound if no product exists with the given ID.
	Patch(ctx context.Context, product Product) (*Product, error)

	// Delete removes a product by its ID.
	// Returns an error matching ErrNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id int) error
}

// StatusError reports a non-2xx answer of the record store.
type StatusError struct {
	Method string
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("record store %s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

// Is makes a 404 answer match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
