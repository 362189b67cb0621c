package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/pricing"
	"github.com/storefront-ir/storefront-service/internal/query"
	"github.com/storefront-ir/storefront-service/internal/repository"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// OrderService coordinates the order lifecycle.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	publisher publisher
	now       func() time.Time
	location  *time.Location
	logger    *zap.Logger
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	// Clock defaults to time.Now; Location decides what "today" means and defaults to UTC.
	Clock    func() time.Time
	Location *time.Location
}

// OrderFilter holds raw listing filters as received from the caller.
type OrderFilter struct {
	Status    string
	DateRange string
	Search    string
	Limit     int
	Offset    int
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput describes a new order.
type PlaceOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress string
	Description     string
}

// OrderUpdateInput carries the administrator editable fields. Nil fields are left untouched.
type OrderUpdateInput struct {
	Status      *domain.OrderStatus
	Total       *decimal.Decimal
	Description *string
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	now := clockOrDefault(deps.Clock)
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:    deps.OrderRepo,
		products:  deps.ProductRepo,
		publisher: publisher{dispatcher: deps.Dispatcher, now: now, logger: logger},
		now:       now,
		location:  location,
		logger:    logger,
	}
}

// ListOrders returns the orders visible to caller that match every set filter.
func (s *OrderService) ListOrders(ctx context.Context, caller *domain.User, filter OrderFilter) ([]domain.Order, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	q := query.OrderQuery{Search: filter.Search, Limit: filter.Limit, Offset: filter.Offset}
	if strings.TrimSpace(filter.Status) != "" {
		status, ok := domain.ParseOrderStatus(filter.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": filter.Status})
		}
		q.Status = &status
	}
	dateRange, ok := query.ParseDateRange(filter.DateRange)
	if !ok {
		return nil, apperrors.NewValidationError("invalid date range", map[string]any{"date": filter.DateRange})
	}
	q.Range = dateRange
	if !caller.IsAdmin() {
		q.OwnerID = &caller.ID
	}

	orders, err := s.orders.List(ctx, q, s.now().In(s.location))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orders, nil
}

// GetOrder returns an order to its owner or an administrator. Other callers get a 404.
func (s *OrderService) GetOrder(ctx context.Context, caller *domain.User, id string) (*domain.Order, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "order", id)
	}
	if !canSee(caller, order.OwnerID) {
		return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
	}
	return order, nil
}

// PlaceOrder creates a PENDING order for caller, capturing current unit prices.
func (s *OrderService) PlaceOrder(ctx context.Context, caller *domain.User, input PlaceOrderInput) (*domain.Order, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, apperrors.NotFoundOr(err, "product", line.ProductID)
		}
		if !product.Active {
			return nil, apperrors.NewValidationError("product is not available", map[string]any{"product_id": product.ID})
		}
		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		})
	}

	total := domain.ItemsTotal(items)
	if err := pricing.CheckAmount(total); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"total": total.String()})
	}
	order := &domain.Order{
		OwnerID:         caller.ID,
		Owner:           caller.Summary(),
		Status:          domain.OrderStatusPending,
		Total:           total,
		Description:     strings.TrimSpace(input.Description),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		Items:           items,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		var openErr *repository.OpenOrderError
		if errors.As(err, &openErr) {
			return nil, apperrors.NewConflict("an open order already exists for this product", map[string]any{"product_id": openErr.ProductID})
		}
		return nil, apperrors.MapError(err)
	}
	order.Owner = caller.Summary()

	s.publisher.publish(ctx, events.Event{
		Type:     events.EventOrderPlaced,
		OwnerID:  order.OwnerID,
		EntityID: order.ID,
		Actor:    actorOf(caller),
		Payload:  events.OrderPlacedPayload{Total: order.Total, ItemCount: len(order.Items)},
	})
	s.logger.Info("order placed", zap.String("order_id", order.ID), zap.String("owner_id", order.OwnerID))
	return order, nil
}

func validatePlaceOrder(input PlaceOrderInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		details["shipping_address"] = "required"
	}
	if len(input.Items) == 0 {
		details["items"] = "at least one item is required"
	}
	seen := make(map[string]struct{}, len(input.Items))
	for _, line := range input.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			details["items"] = "product_id is required"
			break
		}
		if line.Quantity < 1 {
			details["items"] = "quantity must be at least 1"
			break
		}
		if _, dup := seen[line.ProductID]; dup {
			details["items"] = "each product may appear once"
			break
		}
		seen[line.ProductID] = struct{}{}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid order", details)
	}
	return nil
}

// UpdateStatus sets the order status. Any of the five statuses is accepted from any other,
// including moving backwards.
func (s *OrderService) UpdateStatus(ctx context.Context, caller *domain.User, id string, status domain.OrderStatus) (*domain.Order, error) {
	return s.Update(ctx, caller, id, OrderUpdateInput{Status: &status}, nil)
}

// UpdateFields overwrites total and description. Items are not consulted, so a manual total
// may disagree with the line items.
func (s *OrderService) UpdateFields(ctx context.Context, caller *domain.User, id string, total *decimal.Decimal, description *string) (*domain.Order, error) {
	return s.Update(ctx, caller, id, OrderUpdateInput{Total: total, Description: description}, nil)
}

// Update applies an administrator edit. With a nil expectedVersion the last write wins;
// otherwise a stale version yields a conflict and nothing is written.
func (s *OrderService) Update(ctx context.Context, caller *domain.User, id string, input OrderUpdateInput, expectedVersion *int) (*domain.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if input.Status == nil && input.Total == nil && input.Description == nil {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(*input.Status)})
	}
	if input.Total != nil {
		if err := pricing.CheckAmount(*input.Total); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"total": input.Total.String()})
		}
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "order", id)
	}
	oldStatus := order.Status
	if input.Status != nil {
		order.Status = *input.Status
	}
	if input.Total != nil {
		order.Total = *input.Total
	}
	if input.Description != nil {
		order.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.orders.Update(ctx, order, expectedVersion); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewConflict("order was modified by someone else", map[string]any{
				"id":               id,
				"expected_version": *expectedVersion,
			})
		}
		return nil, apperrors.NotFoundOr(err, "order", id)
	}

	if input.Status != nil {
		s.publisher.publish(ctx, events.Event{
			Type:     events.EventOrderStatusChanged,
			OwnerID:  order.OwnerID,
			EntityID: order.ID,
			Actor:    actorOf(caller),
			Payload:  events.OrderStatusChangedPayload{OldStatus: oldStatus, NewStatus: order.Status},
		})
	}
	if input.Total != nil || input.Description != nil {
		s.publisher.publish(ctx, events.Event{
			Type:     events.EventOrderUpdated,
			OwnerID:  order.OwnerID,
			EntityID: order.ID,
			Actor:    actorOf(caller),
			Payload: events.OrderUpdatedPayload{
				Total:              order.Total,
				TotalChanged:       input.Total != nil,
				DescriptionChanged: input.Description != nil,
			},
		})
	}
	s.logger.Info("order updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
		zap.Int("version", order.Version))
	return order, nil
}
