package recordstore

import (
	"context"
	"net/http"
	"slices"
	"sync"
)

// InMemory implements Store using an in-memory map. It mirrors the answers of a
// json-server style store: missing ids are 404, duplicate ids on Post are 409.
type InMemory struct {
	mu       sync.RWMutex
	products map[int]Product
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an in-memory store holding seed.
func NewInMemory(seed ...Product) *InMemory {
	s := &InMemory{products: make(map[int]Product, len(seed))}
	for _, p := range seed {
		s.products[p.ID] = p
	}
	return s
}

// List returns all products ordered by id.
func (s *InMemory) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b Product) int { return a.ID - b.ID })
	return list, nil
}

// Get retrieves a product by its ID.
func (s *InMemory) Get(_ context.Context, id int) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, &StatusError{Method: http.MethodGet, Path: itemPath(id), Status: http.StatusNotFound}
	}
	return &p, nil
}

// Post stores product. A zero id is replaced by the next free id.
func (s *InMemory) Post(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == 0 {
		for id := range s.products {
			product.ID = max(product.ID, id)
		}
		product.ID++
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, &StatusError{Method: http.MethodPost, Path: productsPath, Status: http.StatusConflict}
	}
	s.products[product.ID] = product
	return &product, nil
}

// Patch replaces the stored product with the same id.
func (s *InMemory) Patch(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return nil, &StatusError{Method: http.MethodPatch, Path: itemPath(product.ID), Status: http.StatusNotFound}
	}
	s.products[product.ID] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (s *InMemory) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return &StatusError{Method: http.MethodDelete, Path: itemPath(id), Status: http.StatusNotFound}
	}
	delete(s.products, id)
	return nil
}
