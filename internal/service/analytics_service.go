package service

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/repository"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// AnalyticsService computes the administrator dashboard.
type AnalyticsService struct {
	orders  repository.OrderRepository
	tickets repository.TicketRepository
}

// StatusShare is the count of records in one bucket and its share of the total.
type StatusShare struct {
	Key        string
	Label      string
	Count      int
	Percentage float64
}

// OrderAnalytics aggregates orders.
type OrderAnalytics struct {
	Total        int
	ByStatus     []StatusShare
	Revenue      decimal.Decimal
	PricePending int
}

// TicketAnalytics aggregates tickets. Open counts OPEN and IN_PROGRESS tickets.
type TicketAnalytics struct {
	Total      int
	Open       int
	ByStatus   []StatusShare
	ByPriority []StatusShare
}

// Analytics is the dashboard payload.
type Analytics struct {
	Orders  OrderAnalytics
	Tickets TicketAnalytics
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(orders repository.OrderRepository, tickets repository.TicketRepository) *AnalyticsService {
	return &AnalyticsService{orders: orders, tickets: tickets}
}

// Dashboard aggregates orders and tickets. Every status and priority is listed, zero counts included.
func (s *AnalyticsService) Dashboard(ctx context.Context, caller *domain.User) (*Analytics, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	orderStats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticketStats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := &Analytics{
		Orders: OrderAnalytics{
			Total:        orderStats.Total,
			Revenue:      orderStats.Revenue,
			PricePending: orderStats.PricePending,
		},
		Tickets: TicketAnalytics{
			Total: ticketStats.Total,
			Open:  ticketStats.ByStatus[domain.TicketStatusOpen] + ticketStats.ByStatus[domain.TicketStatusInProgress],
		},
	}
	for _, status := range domain.OrderStatuses {
		count := orderStats.ByStatus[status]
		out.Orders.ByStatus = append(out.Orders.ByStatus, StatusShare{
			Key: string(status), Label: status.Label(), Count: count, Percentage: Percentage(count, orderStats.Total),
		})
	}
	for _, status := range domain.TicketStatuses {
		count := ticketStats.ByStatus[status]
		out.Tickets.ByStatus = append(out.Tickets.ByStatus, StatusShare{
			Key: string(status), Label: status.Label(), Count: count, Percentage: Percentage(count, ticketStats.Total),
		})
	}
	for _, priority := range domain.TicketPriorities {
		count := ticketStats.ByPriority[priority]
		out.Tickets.ByPriority = append(out.Tickets.ByPriority, StatusShare{
			Key: string(priority), Label: priority.Label(), Count: count, Percentage: Percentage(count, ticketStats.Total),
		})
	}
	return out, nil
}

// Percentage returns part/total as a percentage rounded to one decimal place; zero when total is zero.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}
