package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/shop-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventProductDeleted     EventType = "product_deleted"
	EventUserRegistered     EventType = "user_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	AggregateID string      `json:"aggregate_id"`
	ActorID     string      `json:"actor_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, aggregateID, actorID string, payload interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actorID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	UserID     string            `json:"user_id"`
	TotalPrice float64           `json:"total_price"`
	Products   []domain.LineItem `json:"products"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// ProductDeletedPayload payload.
type ProductDeletedPayload struct {
	OwnerUserID string `json:"owner_user_id"`
	Name        string `json:"name"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
}
