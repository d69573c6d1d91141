package services

import (
	"context"
	"strings"

	"petitshop/internal/apperrors"
	"petitshop/internal/models"
	"petitshop/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductService serves the merged product listing and the catalog.
type ProductService struct {
	products   repositories.ProductRepository
	items      repositories.CartItemRepository
	businesses repositories.BusinessRepository
}

// NewProductService creates a new ProductService.
func NewProductService(products repositories.ProductRepository, items repositories.CartItemRepository, businesses repositories.BusinessRepository) *ProductService {
	return &ProductService{products: products, items: items, businesses: businesses}
}

// List merges storefront items and catalog products, storefront items first.
func (s *ProductService) List(ctx context.Context, filter repositories.CatalogFilter) ([]models.Listing, error) {
	storefront, err := s.items.ListStorefront(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to list storefront items")
	}
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to list products")
	}
	catalog := make([]models.Listing, 0, len(products))
	for _, p := range products {
		catalog = append(catalog, models.CatalogListing(p))
	}
	return models.MergeListings(storefront, catalog), nil
}

// ProductInput is a new catalog product.
type ProductInput struct {
	Title      string
	Price      decimal.Decimal
	Category   string
	Image      *string
	BusinessID uint
}

// Create adds a catalog product to an existing business. Sellers only.
func (s *ProductService) Create(ctx context.Context, id Identity, in ProductInput) (*models.Product, error) {
	if id.Role != models.RoleSeller {
		return nil, apperrors.Forbidden("Only sellers can create products")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.BadRequest("Title is required")
	}
	if in.Price.IsNegative() {
		return nil, apperrors.BadRequest("Price must not be negative")
	}
	ok, err := s.businesses.Exists(ctx, in.BusinessID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to check business")
	}
	if !ok {
		return nil, apperrors.BadRequest("Business %d does not exist", in.BusinessID)
	}

	product := &models.Product{
		Title:      strings.TrimSpace(in.Title),
		Price:      in.Price,
		Category:   in.Category,
		Image:      in.Image,
		BusinessID: in.BusinessID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.Internal(err, "Failed to create product")
	}
	return product, nil
}
