package repositories

import (
	"context"

	"petitshop/internal/models"
)

// ProductRepository defines the interface for catalog product data access.
type ProductRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// FindFirst returns the first of ids that exists.
	FindFirst(ctx context.Context, ids []uint) (*models.Product, error)
}
