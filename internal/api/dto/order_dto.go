package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest payload for POST /orders.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
	Description     string             `json:"description"`
}

// UpdateOrderRequest payload for PUT /orders/:id. Absent fields are left untouched.
type UpdateOrderRequest struct {
	Status      *string          `json:"status"`
	Total       *decimal.Decimal `json:"total"`
	Description *string          `json:"description"`
}

// OwnerResponse identifies the owner of an order or ticket.
type OwnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderItemResponse is one order line.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// OrderResponse is the order representation shared by list and detail endpoints.
type OrderResponse struct {
	ID              string              `json:"id"`
	Status          string              `json:"status"`
	StatusLabel     string              `json:"statusLabel"`
	Total           decimal.Decimal     `json:"total"`
	TotalLabel      string              `json:"totalLabel"`
	PricePending    bool                `json:"pricePending"`
	Description     string              `json:"description"`
	ShippingAddress string              `json:"shippingAddress"`
	Items           []OrderItemResponse `json:"orderItems"`
	User            OwnerResponse       `json:"user"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}
