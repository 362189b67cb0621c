package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/storefront-ir/storefront-service/internal/api/dto"
	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/service"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints for users and administrators.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), caller, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		OrderID:     req.OrderID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets?status=&priority=&search=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	limit, offset := pageWindow(c)
	tickets, err := h.service.ListTickets(c.UserContext(), caller, service.TicketFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, _ := domain.ParseTicketStatus(req.Status)
	ticket, err := h.service.UpdateStatus(c.UserContext(), caller, c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	update, err := h.service.AddMessage(c.UserContext(), caller, c.Params("id"), service.TicketMessageInput{
		Message:    req.Message,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketUpdateResponse(update)})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:            ticket.ID,
		Subject:       ticket.Subject,
		Description:   ticket.Description,
		Status:        string(ticket.Status),
		StatusLabel:   ticket.Status.Label(),
		Priority:      string(ticket.Priority),
		PriorityLabel: ticket.Priority.Label(),
		OrderID:       ticket.OrderID,
		User:          ownerResponse(ticket.Owner),
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
	for i := range ticket.Updates {
		resp.Updates = append(resp.Updates, ticketUpdateResponse(&ticket.Updates[i]))
	}
	return resp
}

func ticketUpdateResponse(update *domain.TicketUpdate) dto.TicketUpdateResponse {
	return dto.TicketUpdateResponse{
		ID:         update.ID,
		Message:    update.Message,
		IsInternal: update.IsInternal,
		User:       dto.OwnerResponse{ID: update.AuthorID, Name: update.AuthorName},
		CreatedAt:  update.CreatedAt,
	}
}
