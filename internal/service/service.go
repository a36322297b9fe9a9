// Package service provides the product gateway: domain operations over the external record store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	producterrors "github.com/abgdnv/productproxy/internal/errors"
	"github.com/abgdnv/productproxy/internal/recordstore"
	"github.com/abgdnv/productproxy/pkg/messaging"
	"github.com/abgdnv/productproxy/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// Every call re-reads the record store; the service keeps no local copy.
type ProductService interface {
	// FindAll returns all products held by the record store.
	// Returns ErrProductNotFound if the store cannot be read.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if the product is absent or the store cannot be read.
	FindByID(ctx context.Context, id int) (*ProductDto, error)

	// LastID returns the number of products currently in the store.
	LastID(ctx context.Context) (int, error)

	// Create assigns the next id and writes a new product.
	// Returns ErrBadRequest if any step fails.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update merges the set fields of product over the existing one.
	// Returns ErrBadRequest if the product is absent, product is nil, or the write fails.
	Update(ctx context.Context, id int, product *ProductUpdateDto) (*ProductDto, error)

	// Delete removes a product and returns its state before deletion.
	// Returns ErrProductNotFound if the product is absent or the delete fails.
	Delete(ctx context.Context, id int) (*ProductDto, error)
}

// Service implements ProductService on top of a recordstore.Store.
type Service struct {
	store     recordstore.Store
	publisher messaging.Publisher
	logger    *slog.Logger
	mutations metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided store and publisher.
func NewService(store recordstore.Store, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("product-proxy")
	mutations, err := meter.Int64Counter("product_mutations", metric.WithDescription("Total number of applied product mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_mutations counter: %v", err))
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "service"),
		mutations: mutations,
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       float64 `json:"stock"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Price and Stock are pointers so that an explicit 0 passes the required rule.
type ProductCreateDto struct {
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Stock       *float64 `json:"stock" validate:"required"`
}

// ProductUpdateDto represents the data transfer object for a partial update.
// A nil field keeps the existing value.
type ProductUpdateDto struct {
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Price       *float64 `json:"price"`
	Stock       *float64 `json:"stock"`
}

var errNilProduct = errors.New("product is nil")

// FindAll retrieves a list of all products and returns them as ProductDtos.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, producterrors.NotFound(fmt.Errorf("failed to list products: %w", err))
	}
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos, nil
}

// FindByID retrieves a product by its ID with a single store read.
func (s *Service) FindByID(ctx context.Context, id int) (*ProductDto, error) {
	product, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, producterrors.NotFound(fmt.Errorf("failed to get product %d: %w", id, err))
	}
	return toDto(product), nil
}

// LastID returns the count of products, not the highest id.
func (s *Service) LastID(ctx context.Context) (int, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return 0, producterrors.NotFound(fmt.Errorf("failed to count products: %w", err))
	}
	return len(products), nil
}

// Create builds the product with id LastID()+1, writes it and returns the locally built product.
func (s *Service) Create(ctx context.Context, dto ProductCreateDto) (*ProductDto, error) {
	if dto.Price == nil || dto.Stock == nil {
		return nil, producterrors.BadRequest(errors.New("price and stock are required"))
	}
	lastID, err := s.LastID(ctx)
	if err != nil {
		return nil, producterrors.BadRequest(err)
	}
	product := recordstore.Product{
		ID:          lastID + 1,
		Description: dto.Description,
		Price:       *dto.Price,
		Stock:       *dto.Stock,
	}
	if _, err := s.store.Post(ctx, product); err != nil {
		return nil, producterrors.BadRequest(fmt.Errorf("failed to create product %d: %w", product.ID, err))
	}

	s.record(ctx, events.TypeCreated, product)
	return toDto(&product), nil
}

// Update merges dto over the stored product, writes it and returns the merged product.
func (s *Service) Update(ctx context.Context, id int, dto *ProductUpdateDto) (*ProductDto, error) {
	if dto == nil {
		return nil, producterrors.BadRequest(errNilProduct)
	}
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, producterrors.BadRequest(err)
	}

	merged := *existing
	if dto.Description != nil {
		merged.Description = *dto.Description
	}
	if dto.Price != nil {
		merged.Price = *dto.Price
	}
	if dto.Stock != nil {
		merged.Stock = *dto.Stock
	}
	if _, err := s.store.Patch(ctx, merged); err != nil {
		return nil, producterrors.BadRequest(fmt.Errorf("failed to update product %d: %w", id, err))
	}

	s.record(ctx, events.TypeUpdated, merged)
	return toDto(&merged), nil
}

// Delete removes a product and returns the snapshot taken before the delete.
func (s *Service) Delete(ctx context.Context, id int) (*ProductDto, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, producterrors.NotFound(err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, producterrors.NotFound(fmt.Errorf("failed to delete product %d: %w", id, err))
	}

	s.record(ctx, events.TypeDeleted, *existing)
	return toDto(existing), nil
}

// find scans the full collection for id.
func (s *Service) find(ctx context.Context, id int) (*recordstore.Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, recordstore.ErrNotFound)
}

// record counts a successful mutation and publishes its event. Publish failures are only logged.
func (s *Service) record(ctx context.Context, eventType string, p recordstore.Product) {
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", eventType)))

	event := events.NewProductEvent(eventType, events.ProductSnapshot{
		ID:          p.ID,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	})
	event.Carrier = make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, event.Carrier)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish product event", "type", eventType, "ID", p.ID, "error", err)
	}
}

// toDto converts a recordstore.Product to a ProductDto.
func toDto(product *recordstore.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
	}
}
