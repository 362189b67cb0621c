package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-ir/storefront-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderPlaced         EventType = "order_placed"
	EventOrderStatusChanged  EventType = "order_status_changed"
	EventOrderUpdated        EventType = "order_updated"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketMessageAdded  EventType = "ticket_message_added"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services after the change is committed.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	OwnerID   string    `json:"owner_id"`
	EntityID  string    `json:"entity_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// OrderUpdatedPayload payload for total/description corrections.
type OrderUpdatedPayload struct {
	Total              decimal.Decimal `json:"total"`
	TotalChanged       bool            `json:"total_changed"`
	DescriptionChanged bool            `json:"description_changed"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject  string                `json:"subject"`
	Priority domain.TicketPriority `json:"priority"`
	OrderID  *string               `json:"order_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Subject   string              `json:"subject"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	Subject     string `json:"subject"`
	UpdateID    string `json:"update_id"`
	IsInternal  bool   `json:"is_internal"`
	FromAdmin   bool   `json:"from_admin"`
	BodyPreview string `json:"body_preview"`
}
