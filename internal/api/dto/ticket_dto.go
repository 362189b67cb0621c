package dto

import "time"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	OrderID     *string `json:"orderId"`
}

// UpdateTicketRequest payload for PUT /tickets/:id.
type UpdateTicketRequest struct {
	Status string `json:"status"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Message    string `json:"message"`
	IsInternal bool   `json:"isInternal"`
}

// TicketUpdateResponse is one entry of a ticket thread.
type TicketUpdateResponse struct {
	ID         string        `json:"id"`
	Message    string        `json:"message"`
	IsInternal bool          `json:"isInternal"`
	User       OwnerResponse `json:"user"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// TicketResponse is the ticket representation. Updates is omitted in listings.
type TicketResponse struct {
	ID            string                 `json:"id"`
	Subject       string                 `json:"subject"`
	Description   string                 `json:"description"`
	Status        string                 `json:"status"`
	StatusLabel   string                 `json:"statusLabel"`
	Priority      string                 `json:"priority"`
	PriorityLabel string                 `json:"priorityLabel"`
	OrderID       *string                `json:"orderId"`
	User          OwnerResponse          `json:"user"`
	Updates       []TicketUpdateResponse `json:"updates,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}
