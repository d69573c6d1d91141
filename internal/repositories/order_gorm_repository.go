package repositories

import (
	"context"

	"petitshop/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return wrapErr(err, "failed to create order")
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, wrapErr(err, "failed to get order %d", id)
	}
	return &order, nil
}

func (r *GORMOrderRepository) UpdatePayment(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Model(order).
		Select("PayPalOrderID", "PayPalPayerID", "PayPalPaymentStatus", "PayPalCaptureID").
		Updates(order)
	if res.Error != nil {
		return wrapErr(res.Error, "failed to update payment of order %d", order.ID)
	}
	if res.RowsAffected == 0 {
		return wrapErr(ErrNotFound, "order %d", order.ID)
	}
	return nil
}
