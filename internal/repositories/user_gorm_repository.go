package repositories

import (
	"context"
	"strings"

	"petitshop/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create inserts a user. A taken (email, role) pair yields ErrDuplicate.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapErr(err, "failed to create user %s", user.Email)
	}
	return nil
}

func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapErr(err, "failed to get user %d", id)
	}
	return &user, nil
}

func (r *GORMUserRepository) GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND role = ?", normalizeEmail(email), role).
		First(&user).Error
	if err != nil {
		return nil, wrapErr(err, "failed to get %s user by email", role)
	}
	return &user, nil
}

func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		Order("id").
		First(&user).Error
	if err != nil {
		return nil, wrapErr(err, "failed to get user by email")
	}
	return &user, nil
}

func (r *GORMUserRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&user).Error; err != nil {
		return nil, wrapErr(err, "failed to get user by verification token")
	}
	return &user, nil
}

// Update saves every column of the user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return wrapErr(err, "failed to update user %d", user.ID)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
