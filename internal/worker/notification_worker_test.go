package worker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/repository/memory"
	"github.com/storefront-ir/storefront-service/internal/service"
)

func TestWorkerDeliversQueuedEventsOnStop(t *testing.T) {
	store := memory.New()
	notifications := service.NewNotificationService(service.NotificationDependencies{Store: store.Notifications()})
	dispatcher := events.NewInMemoryDispatcher(nil)
	w := StartNotificationWorker(dispatcher, notifications, nil, 1)
	require.NotNil(t, w)

	for i := 0; i < 3; i++ {
		require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
			Type:     events.EventOrderStatusChanged,
			OwnerID:  "u1",
			EntityID: "o1",
			Actor:    events.Actor{UserID: "admin", Role: domain.RoleAdmin},
			Payload:  events.OrderStatusChangedPayload{OldStatus: domain.OrderStatusPending, NewStatus: domain.OrderStatusShipped},
		}))
	}
	w.Stop()

	got, err := store.Notifications().List(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, domain.NotificationOrderStatus, got[0].Type)
}

func TestWorkerDeliversInlineAfterStop(t *testing.T) {
	store := memory.New()
	notifications := service.NewNotificationService(service.NotificationDependencies{Store: store.Notifications()})
	dispatcher := events.NewInMemoryDispatcher(nil)
	w := StartNotificationWorker(dispatcher, notifications, nil, 0)
	w.Stop()
	w.Stop()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventOrderPlaced,
		OwnerID:  "u1",
		EntityID: "o1",
		Actor:    events.Actor{UserID: "u1", Role: domain.RoleUser},
		Payload:  events.OrderPlacedPayload{Total: decimal.Zero, ItemCount: 1},
	}))

	got, err := store.Notifications().List(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "قیمت در انتظار تعیین")
}

func TestStartWithoutServiceIsNoop(t *testing.T) {
	assert.Nil(t, StartNotificationWorker(events.NewInMemoryDispatcher(nil), nil, nil, 0))
	var w *NotificationWorker
	w.Stop()
}
