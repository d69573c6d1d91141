package repositories

import (
	"context"

	"petitshop/internal/models"
)

// CartItemRepository defines the interface for storefront item data access.
type CartItemRepository interface {
	List(ctx context.Context, pageID *string) ([]models.CartItem, error)
	GetByID(ctx context.Context, id string) (*models.CartItem, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, item *models.CartItem) error
	Update(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, id string) error
	// ListStorefront returns the items matching filter together with their pages.
	ListStorefront(ctx context.Context, filter CatalogFilter) ([]models.Listing, error)
	// FindFirstWithPage returns the first of ids that exists, with its page loaded.
	FindFirstWithPage(ctx context.Context, ids []string) (*models.CartItem, *models.Page, error)
}
