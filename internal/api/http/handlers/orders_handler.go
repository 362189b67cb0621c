package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/storefront-ir/storefront-service/internal/api/dto"
	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/pricing"
	"github.com/storefront-ir/storefront-service/internal/service"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// OrdersHandler manages order endpoints.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// ListOrders GET /orders?status=&date=&search=.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	limit, offset := pageWindow(c)
	orders, err := h.service.ListOrders(c.UserContext(), caller, service.OrderFilter{
		Status:    c.Query("status"),
		DateRange: c.Query("date"),
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, orderResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{"orders": items})
}

// GetOrder GET /orders/:id.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	setVersionTag(c, order.Version)
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// CreateOrder POST /orders.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.PlaceOrderInput{ShippingAddress: req.ShippingAddress, Description: req.Description}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := h.service.PlaceOrder(c.UserContext(), caller, input)
	if err != nil {
		return err
	}
	setVersionTag(c, order.Version)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": orderResponse(order)})
}

// UpdateOrder PUT /orders/:id. An If-Match header carrying the order version turns on the
// stale-write check.
func (h *OrdersHandler) UpdateOrder(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	expected, err := parseIfMatch(c.Get(fiber.HeaderIfMatch))
	if err != nil {
		return err
	}

	input := service.OrderUpdateInput{Total: req.Total, Description: req.Description}
	if req.Status != nil {
		status, _ := domain.ParseOrderStatus(*req.Status)
		input.Status = &status
	}
	order, err := h.service.Update(c.UserContext(), caller, c.Params("id"), input, expected)
	if err != nil {
		return err
	}
	setVersionTag(c, order.Version)
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

func parseIfMatch(header string) (*int, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return nil, nil
	}
	raw := strings.Trim(strings.TrimPrefix(header, "W/"), `"`)
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		return nil, apperrors.NewValidationError("invalid If-Match header", map[string]any{"if_match": header})
	}
	return &version, nil
}

func setVersionTag(c *fiber.Ctx, version int) {
	c.Set(fiber.HeaderETag, strconv.Quote(strconv.Itoa(version)))
}

func orderResponse(order *domain.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return dto.OrderResponse{
		ID:              order.ID,
		Status:          string(order.Status),
		StatusLabel:     order.Status.Label(),
		Total:           order.Total,
		TotalLabel:      pricing.FormatPrice(order.Total),
		PricePending:    order.PricePending(),
		Description:     order.Description,
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		User:            ownerResponse(order.Owner),
		Version:         order.Version,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
