package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/pricing"
	"github.com/storefront-ir/storefront-service/internal/repository"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// NotificationService turns domain events into inbox notifications for the affected user.
type NotificationService struct {
	store  repository.NotificationRepository
	logger *zap.Logger
	now    func() time.Time
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Store  repository.NotificationRepository
	Logger *zap.Logger
	Clock  func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: deps.Store, logger: logger, now: clockOrDefault(deps.Clock)}
}

// EventTypes lists the events that produce notifications.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventOrderPlaced,
		events.EventOrderStatusChanged,
		events.EventOrderUpdated,
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketMessageAdded,
	}
}

// RegisterHandlers subscribes Handle to every notifying event on dispatcher.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range n.EventTypes() {
		dispatcher.Subscribe(eventType, n.Handle)
	}
}

// Handle builds and stores the notification for one event. Events that concern nobody
// (internal notes, the owner's own replies) are dropped.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	notification, err := n.build(event)
	if err != nil {
		return err
	}
	if notification == nil {
		return nil
	}
	if err := n.store.Push(ctx, notification); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	n.logger.Info("notification emitted",
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", notification.UserID),
		zap.String("entity_id", event.EntityID))
	return nil
}

func (n *NotificationService) build(event events.Event) (*domain.Notification, error) {
	if event.OwnerID == "" {
		return nil, fmt.Errorf("event %s has no owner", event.Type)
	}
	notification := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    event.OwnerID,
		CreatedAt: n.now(),
	}
	orderLink := "/orders/" + event.EntityID
	ticketLink := "/tickets/" + event.EntityID

	switch payload := event.Payload.(type) {
	case events.OrderPlacedPayload:
		notification.Type = domain.NotificationOrderPlaced
		notification.Title = "سفارش شما ثبت شد"
		notification.Message = fmt.Sprintf("سفارش شما با %d قلم کالا ثبت شد. مبلغ: %s", payload.ItemCount, pricing.FormatPrice(payload.Total))
		notification.Link = orderLink
	case events.OrderStatusChangedPayload:
		notification.Type = domain.NotificationOrderStatus
		notification.Title = "تغییر وضعیت سفارش"
		notification.Message = fmt.Sprintf("وضعیت سفارش شما به «%s» تغییر کرد", payload.NewStatus.Label())
		notification.Link = orderLink
	case events.OrderUpdatedPayload:
		notification.Type = domain.NotificationOrderUpdated
		notification.Title = "به‌روزرسانی سفارش"
		notification.Message = "جزئیات سفارش شما به‌روزرسانی شد"
		if payload.TotalChanged {
			notification.Message = fmt.Sprintf("مبلغ سفارش شما: %s", pricing.FormatPrice(payload.Total))
		}
		notification.Link = orderLink
	case events.TicketCreatedPayload:
		notification.Type = domain.NotificationTicketCreated
		notification.Title = "تیکت شما ثبت شد"
		notification.Message = fmt.Sprintf("تیکت «%s» ثبت شد و به زودی بررسی می‌شود", payload.Subject)
		notification.Link = ticketLink
	case events.TicketStatusChangedPayload:
		notification.Type = domain.NotificationTicketStatus
		notification.Title = "تغییر وضعیت تیکت"
		notification.Message = fmt.Sprintf("وضعیت تیکت «%s» به «%s» تغییر کرد", payload.Subject, payload.NewStatus.Label())
		notification.Link = ticketLink
	case events.TicketMessageAddedPayload:
		if payload.IsInternal || event.Actor.UserID == event.OwnerID {
			return nil, nil
		}
		notification.Type = domain.NotificationTicketReply
		notification.Title = "پاسخ جدید به تیکت"
		notification.Message = fmt.Sprintf("پاسخ جدیدی برای تیکت «%s» ثبت شد: %s", payload.Subject, payload.BodyPreview)
		notification.Link = ticketLink
	default:
		return nil, fmt.Errorf("unexpected payload %T for event %s", event.Payload, event.Type)
	}
	return notification, nil
}

// List returns caller's most recent notifications, newest first.
func (n *NotificationService) List(ctx context.Context, caller *domain.User, limit int) ([]domain.Notification, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	notifications, err := n.store.List(ctx, caller.ID, limit)
	return notifications, apperrors.MapError(err)
}

// MarkAllRead marks every notification caller has received so far as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, caller *domain.User) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	return apperrors.MapError(n.store.MarkAllRead(ctx, caller.ID, n.now()))
}
