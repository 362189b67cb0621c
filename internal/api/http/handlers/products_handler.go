package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/storefront-ir/storefront-service/internal/api/dto"
	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/pricing"
	"github.com/storefront-ir/storefront-service/internal/service"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// ProductsHandler exposes the catalogue.
type ProductsHandler struct {
	service *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{service: productService}
}

// ListProducts GET /products.
func (h *ProductsHandler) ListProducts(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	products, err := h.service.ListProducts(c.UserContext(), caller)
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, productResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"products": items})
}

// GetProduct GET /products/:id.
func (h *ProductsHandler) GetProduct(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// CreateProduct POST /products.
func (h *ProductsHandler) CreateProduct(c *fiber.Ctx) error {
	caller, err := auth.Principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	product, err := h.service.CreateProduct(c.UserContext(), caller, service.ProductCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": productResponse(product)})
}

func productResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		PriceLabel:  pricing.FormatPrice(p.Price),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
