package repositories

import (
	"context"

	"petitshop/internal/models"
)

// PageRepository defines the interface for storefront page data access.
type PageRepository interface {
	List(ctx context.Context, businessID *uint) ([]models.Page, error)
	GetByID(ctx context.Context, id string) (*models.Page, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, page *models.Page) error
	Update(ctx context.Context, page *models.Page) error
	// Delete removes the page and its cart items.
	Delete(ctx context.Context, id string) error
}
