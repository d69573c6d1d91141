package repositories

import (
	"context"

	"petitshop/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)
	// GetByEmail returns the first account with the email, whatever its role.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
