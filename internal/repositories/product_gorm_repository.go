package repositories

import (
	"context"
	"errors"

	"petitshop/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

func (r *GORMProductRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Product, error) {
	products := make([]models.Product, 0)
	q := r.db.WithContext(ctx).Order("id")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.BusinessID != nil {
		q = q.Where("business_id = ?", *filter.BusinessID)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, wrapErr(err, "failed to list products")
	}
	return products, nil
}

func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return wrapErr(err, "failed to create product")
	}
	return nil
}

func (r *GORMProductRepository) FindFirst(ctx context.Context, ids []uint) (*models.Product, error) {
	for _, id := range ids {
		var product models.Product
		err := r.db.WithContext(ctx).First(&product, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, wrapErr(err, "failed to get product %d", id)
		}
		return &product, nil
	}
	return nil, wrapErr(ErrNotFound, "no product among %v", ids)
}
