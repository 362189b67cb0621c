package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storefront-ir/storefront-service/internal/api/dto"
	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/service"
)

const defaultNotificationLimit = 50

// NotificationsHandler exposes the caller's inbox.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// List GET /notifications?limit=.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	notifications, err := h.service.List(c.UserContext(), caller, parseInt(c.Query("limit"), defaultNotificationLimit))
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Link:      n.Link,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"notifications": items, "unread": unread})
}

// MarkAllRead POST /notifications/read.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkAllRead(c.UserContext(), caller); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
