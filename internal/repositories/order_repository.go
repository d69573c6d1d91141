package repositories

import (
	"context"

	"petitshop/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	// UpdatePayment persists the processor fields of the order.
	UpdatePayment(ctx context.Context, order *models.Order) error
}
