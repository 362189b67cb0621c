package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		parsed, ok := ParseOrderStatus(" " + string(s) + " ")
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}

	parsed, ok := ParseOrderStatus("shipped")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusShipped, parsed)

	_, ok = ParseOrderStatus("PENDNG")
	assert.False(t, ok)
}

func TestItemsTotal(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(150000)},
		{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("2500.50")},
	}
	assert.True(t, decimal.RequireFromString("302500.50").Equal(ItemsTotal(items)))

	items = append(items, OrderItem{ProductID: "p3", Quantity: 1})
	assert.True(t, ItemsTotal(items).IsZero(), "an unpriced line leaves the total pending")
}

func TestOrderPricePending(t *testing.T) {
	o := &Order{Total: decimal.Zero}
	assert.True(t, o.PricePending())
	o.Total = decimal.NewFromInt(-1)
	assert.True(t, o.PricePending())
	o.Total = decimal.NewFromInt(1)
	assert.False(t, o.PricePending())
}
