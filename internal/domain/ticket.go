package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists every ticket status.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Label returns the Persian label shown to customers.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusOpen:
		return "باز"
	case TicketStatusInProgress:
		return "در حال بررسی"
	case TicketStatusResolved:
		return "حل شده"
	case TicketStatusClosed:
		return "بسته شده"
	}
	return string(s)
}

// ParseTicketStatus normalizes and validates a raw status value.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	s := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// TicketPriority enumerates support urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketPriorities lists every priority from lowest to highest.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Label returns the Persian label shown to customers.
func (p TicketPriority) Label() string {
	switch p {
	case TicketPriorityLow:
		return "کم"
	case TicketPriorityMedium:
		return "متوسط"
	case TicketPriorityHigh:
		return "زیاد"
	case TicketPriorityUrgent:
		return "فوری"
	}
	return string(p)
}

// ParseTicketPriority normalizes and validates a raw priority value.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	p := TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
	return p, p.Valid()
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	OwnerID     string
	Owner       UserSummary
	OrderID     *string
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Updates     []TicketUpdate
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketUpdate is one message in a ticket thread. Internal updates are visible to administrators only.
type TicketUpdate struct {
	ID         string
	TicketID   string
	AuthorID   string
	AuthorName string
	Message    string
	IsInternal bool
	CreatedAt  time.Time
}

// PublicUpdates returns the thread without internal updates.
func (t *Ticket) PublicUpdates() []TicketUpdate {
	visible := make([]TicketUpdate, 0, len(t.Updates))
	for _, update := range t.Updates {
		if update.IsInternal {
			continue
		}
		visible = append(visible, update)
	}
	return visible
}

// OwnerView returns a copy of the ticket suitable for its non-admin owner.
func (t *Ticket) OwnerView() *Ticket {
	view := *t
	view.Updates = t.PublicUpdates()
	return &view
}
