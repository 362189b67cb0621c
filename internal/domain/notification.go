package domain

import "time"

// NotificationType classifies user-visible notifications.
type NotificationType string

const (
	NotificationOrderPlaced   NotificationType = "ORDER_PLACED"
	NotificationOrderStatus   NotificationType = "ORDER_STATUS"
	NotificationOrderUpdated  NotificationType = "ORDER_UPDATED"
	NotificationTicketCreated NotificationType = "TICKET_CREATED"
	NotificationTicketStatus  NotificationType = "TICKET_STATUS"
	NotificationTicketReply   NotificationType = "TICKET_REPLY"
)

// Notification is a message shown in a user's inbox.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
