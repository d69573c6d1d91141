package repositories

import (
	"context"

	"petitshop/internal/models"

	"gorm.io/gorm"
)

// GORMPageRepository is a GORM implementation of PageRepository.
type GORMPageRepository struct {
	db *gorm.DB
}

// NewGORMPageRepository creates a new instance of GORMPageRepository.
func NewGORMPageRepository(db *gorm.DB) *GORMPageRepository {
	return &GORMPageRepository{db: db}
}

func (r *GORMPageRepository) List(ctx context.Context, businessID *uint) ([]models.Page, error) {
	pages := make([]models.Page, 0)
	q := r.db.WithContext(ctx).Preload("CartItems").Order("id")
	if businessID != nil {
		q = q.Where("business_id = ?", *businessID)
	}
	if err := q.Find(&pages).Error; err != nil {
		return nil, wrapErr(err, "failed to list pages")
	}
	return pages, nil
}

func (r *GORMPageRepository) GetByID(ctx context.Context, id string) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).Preload("CartItems").First(&page, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "failed to get page %s", id)
	}
	return &page, nil
}

func (r *GORMPageRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Page{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapErr(err, "failed to check page %s", id)
	}
	return count > 0, nil
}

func (r *GORMPageRepository) Create(ctx context.Context, page *models.Page) error {
	if err := r.db.WithContext(ctx).Omit("CartItems").Create(page).Error; err != nil {
		return wrapErr(err, "failed to create page %s", page.ID)
	}
	return nil
}

func (r *GORMPageRepository) Update(ctx context.Context, page *models.Page) error {
	err := r.db.WithContext(ctx).Model(&models.Page{ID: page.ID}).
		Select("title", "business_id").
		Updates(map[string]any{"title": page.Title, "business_id": page.BusinessID}).Error
	if err != nil {
		return wrapErr(err, "failed to update page %s", page.ID)
	}
	return nil
}

func (r *GORMPageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return wrapErr(err, "failed to delete cart items of page %s", id)
		}
		res := tx.Where("id = ?", id).Delete(&models.Page{})
		if res.Error != nil {
			return wrapErr(res.Error, "failed to delete page %s", id)
		}
		if res.RowsAffected == 0 {
			return wrapErr(ErrNotFound, "page %s", id)
		}
		return nil
	})
}
