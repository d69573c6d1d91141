package repositories

import (
	"context"
	"errors"

	"petitshop/internal/models"

	"gorm.io/gorm"
)

// GORMCartItemRepository is a GORM implementation of CartItemRepository.
type GORMCartItemRepository struct {
	db *gorm.DB
}

// NewGORMCartItemRepository creates a new instance of GORMCartItemRepository.
func NewGORMCartItemRepository(db *gorm.DB) *GORMCartItemRepository {
	return &GORMCartItemRepository{db: db}
}

func (r *GORMCartItemRepository) List(ctx context.Context, pageID *string) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	q := r.db.WithContext(ctx).Order("id")
	if pageID != nil {
		q = q.Where("page_id = ?", *pageID)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, wrapErr(err, "failed to list cart items")
	}
	return items, nil
}

func (r *GORMCartItemRepository) GetByID(ctx context.Context, id string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "failed to get cart item %s", id)
	}
	return &item, nil
}

func (r *GORMCartItemRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapErr(err, "failed to check cart item %s", id)
	}
	return count > 0, nil
}

func (r *GORMCartItemRepository) Create(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return wrapErr(err, "failed to create cart item %s", item.ID)
	}
	return nil
}

func (r *GORMCartItemRepository) Update(ctx context.Context, item *models.CartItem) error {
	err := r.db.WithContext(ctx).Model(&models.CartItem{ID: item.ID}).
		Select("title", "price", "category", "image", "page_id").
		Updates(map[string]any{
			"title":    item.Title,
			"price":    item.Price,
			"category": item.Category,
			"image":    item.Image,
			"page_id":  item.PageID,
		}).Error
	if err != nil {
		return wrapErr(err, "failed to update cart item %s", item.ID)
	}
	return nil
}

func (r *GORMCartItemRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{})
	if res.Error != nil {
		return wrapErr(res.Error, "failed to delete cart item %s", id)
	}
	if res.RowsAffected == 0 {
		return wrapErr(ErrNotFound, "cart item %s", id)
	}
	return nil
}

func (r *GORMCartItemRepository) ListStorefront(ctx context.Context, filter CatalogFilter) ([]models.Listing, error) {
	q := r.db.WithContext(ctx).Order("id")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.BusinessID != nil {
		q = q.Where("page_id IN (?)", r.db.Model(&models.Page{}).Select("id").Where("business_id = ?", *filter.BusinessID))
	}
	var items []models.CartItem
	if err := q.Find(&items).Error; err != nil {
		return nil, wrapErr(err, "failed to list storefront items")
	}

	pageIDs := make([]string, 0, len(items))
	for _, it := range items {
		pageIDs = append(pageIDs, it.PageID)
	}
	pages := make(map[string]*models.Page)
	if len(pageIDs) > 0 {
		var rows []models.Page
		if err := r.db.WithContext(ctx).Where("id IN ?", pageIDs).Find(&rows).Error; err != nil {
			return nil, wrapErr(err, "failed to load storefront pages")
		}
		for i := range rows {
			pages[rows[i].ID] = &rows[i]
		}
	}

	listings := make([]models.Listing, 0, len(items))
	for _, it := range items {
		listings = append(listings, models.StorefrontListing(it, pages[it.PageID]))
	}
	return listings, nil
}

func (r *GORMCartItemRepository) FindFirstWithPage(ctx context.Context, ids []string) (*models.CartItem, *models.Page, error) {
	for _, id := range ids {
		var item models.CartItem
		err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, wrapErr(err, "failed to get cart item %s", id)
		}
		var page models.Page
		if err := r.db.WithContext(ctx).First(&page, "id = ?", item.PageID).Error; err != nil {
			return nil, nil, wrapErr(err, "failed to get page %s", item.PageID)
		}
		return &item, &page, nil
	}
	return nil, nil, wrapErr(ErrNotFound, "no cart item among %v", ids)
}
