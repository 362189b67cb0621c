package dto

import "github.com/shopspring/decimal"

// ShareResponse is one bucket of an analytics breakdown.
type ShareResponse struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// OrderAnalyticsResponse aggregates orders.
type OrderAnalyticsResponse struct {
	Total        int             `json:"total"`
	ByStatus     []ShareResponse `json:"byStatus"`
	Revenue      decimal.Decimal `json:"revenue"`
	RevenueLabel string          `json:"revenueLabel"`
	PricePending int             `json:"pricePending"`
}

// TicketAnalyticsResponse aggregates tickets.
type TicketAnalyticsResponse struct {
	Total      int             `json:"total"`
	Open       int             `json:"open"`
	ByStatus   []ShareResponse `json:"byStatus"`
	ByPriority []ShareResponse `json:"byPriority"`
}

// AnalyticsResponse is the admin dashboard payload.
type AnalyticsResponse struct {
	Orders  OrderAnalyticsResponse  `json:"orders"`
	Tickets TicketAnalyticsResponse `json:"tickets"`
}
