package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/storefront-ir/storefront-service/internal/events"
)

type failingDispatcher struct {
	published []events.Event
}

func (d *failingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return errors.New("bus unavailable")
}

func (d *failingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func TestPublishLogsDispatcherFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dispatcher := &failingDispatcher{}
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	p := publisher{dispatcher: dispatcher, now: func() time.Time { return now }, logger: zap.New(core)}

	p.publish(context.Background(), events.Event{Type: events.EventOrderPlaced, EntityID: "o1"})

	require.Len(t, dispatcher.published, 1)
	assert.NotEmpty(t, dispatcher.published[0].ID)
	assert.Equal(t, now, dispatcher.published[0].Timestamp)

	entries := logs.FilterMessage("event publish failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(events.EventOrderPlaced), fields["event_type"])
	assert.Equal(t, "o1", fields["entity_id"])
	assert.Equal(t, "bus unavailable", fields["error"])
}

func TestPlaceOrderSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Banner", 40)
	core, logs := observer.New(zapcore.WarnLevel)
	orders := NewOrderService(OrderDependencies{
		OrderRepo:   f.store.Orders(),
		ProductRepo: f.store.Products(),
		Dispatcher:  &failingDispatcher{},
		Logger:      zap.New(core),
	})

	order, err := orders.PlaceOrder(f.ctx, f.user, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: "Tabriz",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 1, logs.FilterMessage("event publish failed").Len())
}
