package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the five order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Open reports whether the order is still being worked on.
func (s OrderStatus) Open() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// Label returns the Persian label shown to customers.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "در انتظار بررسی"
	case OrderStatusConfirmed:
		return "تایید شده"
	case OrderStatusShipped:
		return "ارسال شده"
	case OrderStatusDelivered:
		return "تحویل داده شده"
	case OrderStatusCancelled:
		return "لغو شده"
	}
	return string(s)
}

// ParseOrderStatus normalizes and validates a raw status value.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Order is the aggregate for a customer's purchase request.
type Order struct {
	ID              string
	OwnerID         string
	Owner           UserSummary
	Status          OrderStatus
	Total           decimal.Decimal
	Description     string
	ShippingAddress string
	Items           []OrderItem
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PricePending reports whether the total is still to be determined.
func (o *Order) PricePending() bool {
	return !o.Total.IsPositive()
}

// HasProduct reports whether any line item references productID.
func (o *Order) HasProduct(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// OrderItem is a line in an order; UnitPrice is captured when the order is placed.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal returns unit price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the line subtotals. It returns zero when any line is unpriced,
// leaving the order in the price pending state.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if !item.UnitPrice.IsPositive() {
			return decimal.Zero
		}
		total = total.Add(item.Subtotal())
	}
	return total
}
