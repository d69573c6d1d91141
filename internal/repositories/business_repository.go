package repositories

import (
	"context"

	"petitshop/internal/models"
)

// BusinessOwner pairs a business with its owner. Owner is nil when the owner row is gone.
type BusinessOwner struct {
	Business models.Business
	Owner    *models.User
}

// BusinessRepository defines the interface for business data access.
type BusinessRepository interface {
	// List returns businesses with pages and items loaded, optionally only those of ownerID.
	List(ctx context.Context, ownerID *uint) ([]models.Business, error)
	GetByID(ctx context.Context, id uint) (*models.Business, error)
	GetWithOwner(ctx context.Context, id uint) (*BusinessOwner, error)
	// FindWithOwners loads the listed businesses; ids that do not exist are skipped.
	FindWithOwners(ctx context.Context, ids []uint) ([]BusinessOwner, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, business *models.Business) error
	Update(ctx context.Context, business *models.Business) error
	// Delete removes the business together with its pages and their items.
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	// FindOrphans returns businesses with no owner or whose owner no longer exists.
	FindOrphans(ctx context.Context) ([]models.Business, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}
