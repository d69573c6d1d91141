package repositories

import (
	"context"

	"petitshop/internal/models"

	"gorm.io/gorm"
)

// GORMBusinessRepository is a GORM implementation of BusinessRepository.
type GORMBusinessRepository struct {
	db *gorm.DB
}

// NewGORMBusinessRepository creates a new instance of GORMBusinessRepository.
func NewGORMBusinessRepository(db *gorm.DB) *GORMBusinessRepository {
	return &GORMBusinessRepository{db: db}
}

func (r *GORMBusinessRepository) withTree(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Pages").Preload("Pages.CartItems")
}

func (r *GORMBusinessRepository) List(ctx context.Context, ownerID *uint) ([]models.Business, error) {
	businesses := make([]models.Business, 0)
	q := r.withTree(ctx).Order("id")
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	if err := q.Find(&businesses).Error; err != nil {
		return nil, wrapErr(err, "failed to list businesses")
	}
	return businesses, nil
}

func (r *GORMBusinessRepository) GetByID(ctx context.Context, id uint) (*models.Business, error) {
	var business models.Business
	if err := r.withTree(ctx).First(&business, id).Error; err != nil {
		return nil, wrapErr(err, "failed to get business %d", id)
	}
	return &business, nil
}

func (r *GORMBusinessRepository) GetWithOwner(ctx context.Context, id uint) (*BusinessOwner, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, id).Error; err != nil {
		return nil, wrapErr(err, "failed to get business %d", id)
	}
	owners, err := r.loadOwners(ctx, []models.Business{business})
	if err != nil {
		return nil, err
	}
	return &BusinessOwner{Business: business, Owner: ownerOf(business, owners)}, nil
}

func (r *GORMBusinessRepository) FindWithOwners(ctx context.Context, ids []uint) ([]BusinessOwner, error) {
	result := make([]BusinessOwner, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var businesses []models.Business
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&businesses).Error; err != nil {
		return nil, wrapErr(err, "failed to load businesses")
	}
	owners, err := r.loadOwners(ctx, businesses)
	if err != nil {
		return nil, err
	}
	for _, b := range businesses {
		result = append(result, BusinessOwner{Business: b, Owner: ownerOf(b, owners)})
	}
	return result, nil
}

func (r *GORMBusinessRepository) loadOwners(ctx context.Context, businesses []models.Business) (map[uint]*models.User, error) {
	ids := make([]uint, 0, len(businesses))
	for _, b := range businesses {
		if b.OwnerID != nil {
			ids = append(ids, *b.OwnerID)
		}
	}
	owners := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrapErr(err, "failed to load business owners")
	}
	for i := range users {
		owners[users[i].ID] = &users[i]
	}
	return owners, nil
}

func ownerOf(b models.Business, owners map[uint]*models.User) *models.User {
	if b.OwnerID == nil {
		return nil
	}
	return owners[*b.OwnerID]
}

func (r *GORMBusinessRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Business{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapErr(err, "failed to check business %d", id)
	}
	return count > 0, nil
}

// Create inserts the business row only; nested pages are managed through their own endpoints.
func (r *GORMBusinessRepository) Create(ctx context.Context, business *models.Business) error {
	if err := r.db.WithContext(ctx).Omit("Pages").Create(business).Error; err != nil {
		return wrapErr(err, "failed to create business")
	}
	return nil
}

// Update overwrites the descriptive fields and the owner.
func (r *GORMBusinessRepository) Update(ctx context.Context, business *models.Business) error {
	res := r.db.WithContext(ctx).Model(&models.Business{ID: business.ID}).
		Select("name", "category", "country", "city", "owner_id").
		Updates(map[string]any{
			"name":     business.Name,
			"category": business.Category,
			"country":  business.Country,
			"city":     business.City,
			"owner_id": business.OwnerID,
		})
	if res.Error != nil {
		return wrapErr(res.Error, "failed to update business %d", business.ID)
	}
	return nil
}

func (r *GORMBusinessRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Business{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return wrapErr(err, "failed to check business %d", id)
		}
		if count == 0 {
			return wrapErr(ErrNotFound, "business %d", id)
		}
		_, err := deleteBusinesses(tx, []uint{id})
		return err
	})
}

func (r *GORMBusinessRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Business{}).Pluck("id", &ids).Error; err != nil {
			return wrapErr(err, "failed to list businesses")
		}
		n, err := deleteBusinesses(tx, ids)
		deleted = n
		return err
	})
	return deleted, err
}

func (r *GORMBusinessRepository) FindOrphans(ctx context.Context) ([]models.Business, error) {
	orphans := make([]models.Business, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id IS NULL OR owner_id NOT IN (?)", r.db.Model(&models.User{}).Select("id")).
		Order("id").
		Find(&orphans).Error
	if err != nil {
		return nil, wrapErr(err, "failed to find orphaned businesses")
	}
	return orphans, nil
}

func (r *GORMBusinessRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := deleteBusinesses(tx, ids)
		deleted = n
		return err
	})
	return deleted, err
}

// deleteBusinesses removes the businesses and everything under them inside tx.
func deleteBusinesses(tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	pages := tx.Model(&models.Page{}).Select("id").Where("business_id IN ?", ids)
	if err := tx.Where("page_id IN (?)", pages).Delete(&models.CartItem{}).Error; err != nil {
		return 0, wrapErr(err, "failed to delete cart items")
	}
	if err := tx.Where("business_id IN ?", ids).Delete(&models.Page{}).Error; err != nil {
		return 0, wrapErr(err, "failed to delete pages")
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Business{})
	if res.Error != nil {
		return 0, wrapErr(res.Error, "failed to delete businesses")
	}
	return res.RowsAffected, nil
}
