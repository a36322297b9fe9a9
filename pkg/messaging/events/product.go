// Package events holds the product change events published after successful mutations.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/productproxy/pkg/messaging"
	"go.opentelemetry.io/otel/propagation"
)

// ProductSnapshot is the product state carried by an event.
type ProductSnapshot struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       float64 `json:"stock"`
}

// ProductEvent reports a created, updated or deleted product.
// For deletions Product is the pre-delete snapshot.
// Carrier holds the trace context of the request that caused the change.
type ProductEvent struct {
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	Type       string                 `json:"type"`
	Product    ProductSnapshot        `json:"product"`
	OccurredAt time.Time              `json:"occurred_at"`
}

const (
	TypeCreated = "created"
	TypeUpdated = "updated"
	TypeDeleted = "deleted"
)

func NewProductEvent(eventType string, p ProductSnapshot) ProductEvent {
	return ProductEvent{Type: eventType, Product: p, OccurredAt: time.Now().UTC()}
}

func (e ProductEvent) Subject() string {
	switch e.Type {
	case TypeCreated:
		return messaging.ProductsCreatedSubject
	case TypeDeleted:
		return messaging.ProductsDeletedSubject
	default:
		return messaging.ProductsUpdatedSubject
	}
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
