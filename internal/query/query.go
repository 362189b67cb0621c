// Package query holds the listing semantics for orders and tickets. The in-memory
// store evaluates them directly and the Postgres store translates them to SQL.
package query

import (
	"strings"
	"time"

	"github.com/storefront-ir/storefront-service/internal/domain"
)

// DateRange names a window relative to the current time.
type DateRange string

const (
	RangeAny   DateRange = ""
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

const day = 24 * time.Hour

// ParseDateRange accepts "", "all", "today", "week" and "month".
func ParseDateRange(raw string) (DateRange, bool) {
	switch r := DateRange(strings.ToLower(strings.TrimSpace(raw))); r {
	case RangeAny, "all":
		return RangeAny, true
	case RangeToday, RangeWeek, RangeMonth:
		return r, true
	}
	return RangeAny, false
}

// Window returns the [from, to) bounds of the range. A zero to means unbounded.
// ok is false for RangeAny.
func (r DateRange) Window(now time.Time) (from, to time.Time, ok bool) {
	switch r {
	case RangeToday:
		y, m, d := now.Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 0, 1), true
	case RangeWeek:
		return now.Add(-7 * day), time.Time{}, true
	case RangeMonth:
		return now.Add(-30 * day), time.Time{}, true
	}
	return time.Time{}, time.Time{}, false
}

// Contains reports whether t falls inside the range evaluated at now.
func (r DateRange) Contains(t, now time.Time) bool {
	if r == RangeToday {
		ty, tm, td := t.In(now.Location()).Date()
		ny, nm, nd := now.Date()
		return ty == ny && tm == nm && td == nd
	}
	from, to, ok := r.Window(now)
	if !ok {
		return true
	}
	if t.Before(from) {
		return false
	}
	return to.IsZero() || t.Before(to)
}

// Normalize lowercases and trims a search term.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Contains reports whether any field contains term, ignoring case. An empty term matches.
func Contains(term string, fields ...string) bool {
	term = Normalize(term)
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Page trims items to the requested window; a non-positive limit keeps everything.
func Page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// OrderQuery filters orders. All set predicates are ANDed.
type OrderQuery struct {
	OwnerID *string
	Status  *domain.OrderStatus
	Range   DateRange
	Search  string
	Limit   int
	Offset  int
}

// Match evaluates the query against one order.
func (q OrderQuery) Match(o *domain.Order, now time.Time) bool {
	if q.OwnerID != nil && o.OwnerID != *q.OwnerID {
		return false
	}
	if q.Status != nil && o.Status != *q.Status {
		return false
	}
	if !q.Range.Contains(o.CreatedAt, now) {
		return false
	}
	return Contains(q.Search, o.ID, o.Owner.Name, o.Owner.Email)
}

// FilterOrders returns the matching orders, preserving input order, then pages them.
func FilterOrders(orders []domain.Order, q OrderQuery, now time.Time) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for i := range orders {
		if q.Match(&orders[i], now) {
			out = append(out, orders[i])
		}
	}
	return Page(out, q.Limit, q.Offset)
}

// TicketQuery filters tickets. All set predicates are ANDed.
type TicketQuery struct {
	OwnerID  *string
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Search   string
	Limit    int
	Offset   int
}

// Match evaluates the query against one ticket.
func (q TicketQuery) Match(t *domain.Ticket) bool {
	if q.OwnerID != nil && t.OwnerID != *q.OwnerID {
		return false
	}
	if q.Status != nil && t.Status != *q.Status {
		return false
	}
	if q.Priority != nil && t.Priority != *q.Priority {
		return false
	}
	return Contains(q.Search, t.Subject, t.Owner.Name, t.Owner.Email)
}

// FilterTickets returns the matching tickets, preserving input order, then pages them.
func FilterTickets(tickets []domain.Ticket, q TicketQuery) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if q.Match(&tickets[i]) {
			out = append(out, tickets[i])
		}
	}
	return Page(out, q.Limit, q.Offset)
}
