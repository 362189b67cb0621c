package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/query"
	"github.com/storefront-ir/storefront-service/internal/repository"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

const messagePreviewLength = 120

// TicketService coordinates the support-ticket workflow.
type TicketService struct {
	tickets   repository.TicketRepository
	updates   repository.TicketUpdateRepository
	orders    repository.OrderRepository
	publisher publisher
	logger    *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UpdateRepo repository.TicketUpdateRepository
	OrderRepo  repository.OrderRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketFilter holds raw listing filters as received from the caller.
type TicketFilter struct {
	Status   string
	Priority string
	Search   string
	Limit    int
	Offset   int
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	// Priority defaults to MEDIUM when empty.
	Priority string
	OrderID  *string
}

// TicketMessageInput is a new entry in a ticket thread.
type TicketMessageInput struct {
	Message    string
	IsInternal bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:   deps.TicketRepo,
		updates:   deps.UpdateRepo,
		orders:    deps.OrderRepo,
		publisher: publisher{dispatcher: deps.Dispatcher, now: clockOrDefault(deps.Clock), logger: logger},
		logger:    logger,
	}
}

// ListTickets returns the tickets visible to caller that match every set filter.
// Listed tickets carry no updates.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, filter TicketFilter) ([]domain.Ticket, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	q := query.TicketQuery{Search: filter.Search, Limit: filter.Limit, Offset: filter.Offset}
	if strings.TrimSpace(filter.Status) != "" {
		status, ok := domain.ParseTicketStatus(filter.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": filter.Status})
		}
		q.Status = &status
	}
	if strings.TrimSpace(filter.Priority) != "" {
		priority, ok := domain.ParseTicketPriority(filter.Priority)
		if !ok {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": filter.Priority})
		}
		q.Priority = &priority
	}
	if !caller.IsAdmin() {
		q.OwnerID = &caller.ID
	}
	tickets, err := s.tickets.List(ctx, q)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket returns a ticket with its thread. Non-administrators never see internal updates.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, id string) (*domain.Ticket, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	ticket, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.withThread(ctx, caller, ticket)
}

// CreateTicket opens a ticket for caller, optionally linked to one of caller's orders.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	ticket := &domain.Ticket{
		OwnerID:     caller.ID,
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		Updates:     []domain.TicketUpdate{},
	}
	details := map[string]any{}
	if ticket.Subject == "" {
		details["subject"] = "required"
	}
	if ticket.Description == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(input.Priority) != "" {
		priority, ok := domain.ParseTicketPriority(input.Priority)
		if !ok {
			details["priority"] = "invalid"
		}
		ticket.Priority = priority
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", details)
	}

	if input.OrderID != nil && strings.TrimSpace(*input.OrderID) != "" {
		orderID := strings.TrimSpace(*input.OrderID)
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, apperrors.NotFoundOr(err, "order", orderID)
		}
		if order.OwnerID != caller.ID {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": orderID})
		}
		ticket.OrderID = &orderID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Owner = caller.Summary()

	s.publisher.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		OwnerID:  ticket.OwnerID,
		EntityID: ticket.ID,
		Actor:    actorOf(caller),
		Payload: events.TicketCreatedPayload{
			Subject:  ticket.Subject,
			Priority: ticket.Priority,
			OrderID:  ticket.OrderID,
		},
	})
	return ticket, nil
}

// UpdateStatus sets the ticket status. Every status is reachable from every other,
// CLOSED included.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.User, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", id)
	}
	oldStatus := ticket.Status
	ticket.Status = status
	if err := s.tickets.UpdateStatus(ctx, ticket); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", id)
	}

	s.publisher.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		OwnerID:  ticket.OwnerID,
		EntityID: ticket.ID,
		Actor:    actorOf(caller),
		Payload: events.TicketStatusChangedPayload{
			Subject:   ticket.Subject,
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(status)))
	return s.withThread(ctx, caller, ticket)
}

// AddMessage appends to the ticket thread. Blank messages and internal notes from
// non-administrators are rejected before any store access. Closed tickets still accept messages.
func (s *TicketService) AddMessage(ctx context.Context, caller *domain.User, id string, input TicketMessageInput) (*domain.TicketUpdate, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", map[string]any{"message": "required"})
	}
	if input.IsInternal && !caller.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators may add internal updates")
	}

	ticket, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	update := &domain.TicketUpdate{
		TicketID:   ticket.ID,
		AuthorID:   caller.ID,
		AuthorName: caller.Name,
		Message:    message,
		IsInternal: input.IsInternal,
	}
	if err := s.updates.Create(ctx, update); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", id)
	}
	if update.AuthorName == "" {
		update.AuthorName = caller.Name
	}
	if err := s.tickets.Touch(ctx, ticket); err != nil {
		s.logger.Warn("ticket touch failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publisher.publish(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		OwnerID:  ticket.OwnerID,
		EntityID: ticket.ID,
		Actor:    actorOf(caller),
		Payload: events.TicketMessageAddedPayload{
			Subject:     ticket.Subject,
			UpdateID:    update.ID,
			IsInternal:  update.IsInternal,
			FromAdmin:   caller.IsAdmin(),
			BodyPreview: stringPreview(update.Message, messagePreviewLength),
		},
	})
	return update, nil
}

func (s *TicketService) loadVisible(ctx context.Context, caller *domain.User, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", id)
	}
	if !canSee(caller, ticket.OwnerID) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

func (s *TicketService) withThread(ctx context.Context, caller *domain.User, ticket *domain.Ticket) (*domain.Ticket, error) {
	updates, err := s.updates.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Updates = updates
	if !caller.IsAdmin() {
		return ticket.OwnerView(), nil
	}
	return ticket, nil
}
