package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/pricing"
	"github.com/storefront-ir/storefront-service/internal/repository"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// ProductService manages the catalogue orders are placed against.
type ProductService struct {
	products repository.ProductRepository
}

// ProductCreateInput describes a new catalogue entry. A zero price means price on request.
type ProductCreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Active      *bool
}

// NewProductService constructs the service.
func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// CreateProduct adds a product. Only administrators may call it.
func (s *ProductService) CreateProduct(ctx context.Context, caller *domain.User, input ProductCreateInput) (*domain.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Active:      true,
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if product.Name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"name": "required"})
	}
	if err := pricing.CheckAmount(product.Price); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"price": product.Price.String()})
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}
	return product, nil
}

// ListProducts returns active products; administrators also see inactive ones.
func (s *ProductService) ListProducts(ctx context.Context, caller *domain.User) ([]domain.Product, error) {
	products, err := s.products.List(ctx, !caller.IsAdmin())
	return products, apperrors.MapError(err)
}

// GetProduct returns one product. Inactive products are hidden from non-administrators.
func (s *ProductService) GetProduct(ctx context.Context, caller *domain.User, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "product", id)
	}
	if !product.Active && !caller.IsAdmin() {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	return product, nil
}
