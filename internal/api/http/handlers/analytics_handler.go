package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storefront-ir/storefront-service/internal/api/dto"
	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/pricing"
	"github.com/storefront-ir/storefront-service/internal/service"
)

// AnalyticsHandler serves the administrator dashboard.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Dashboard GET /admin/analytics.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Dashboard(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AnalyticsResponse{
		Orders: dto.OrderAnalyticsResponse{
			Total:        stats.Orders.Total,
			ByStatus:     shares(stats.Orders.ByStatus),
			Revenue:      stats.Orders.Revenue,
			RevenueLabel: pricing.FormatPrice(stats.Orders.Revenue),
			PricePending: stats.Orders.PricePending,
		},
		Tickets: dto.TicketAnalyticsResponse{
			Total:      stats.Tickets.Total,
			Open:       stats.Tickets.Open,
			ByStatus:   shares(stats.Tickets.ByStatus),
			ByPriority: shares(stats.Tickets.ByPriority),
		},
	}})
}

func shares(in []service.StatusShare) []dto.ShareResponse {
	out := make([]dto.ShareResponse, 0, len(in))
	for _, s := range in {
		out = append(out, dto.ShareResponse{Key: s.Key, Label: s.Label, Count: s.Count, Percentage: s.Percentage})
	}
	return out
}
