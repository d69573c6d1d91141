package services_test

import (
	"context"

	"petitshop/internal/mail"
	"petitshop/internal/models"
	"petitshop/internal/notify"
	"petitshop/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockBusinessRepository is a mock implementation of repositories.BusinessRepository.
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) List(ctx context.Context, ownerID *uint) ([]models.Business, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.Business), args.Error(1)
}

func (m *MockBusinessRepository) GetByID(ctx context.Context, id uint) (*models.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessRepository) GetWithOwner(ctx context.Context, id uint) (*repositories.BusinessOwner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.BusinessOwner), args.Error(1)
}

func (m *MockBusinessRepository) FindWithOwners(ctx context.Context, ids []uint) ([]repositories.BusinessOwner, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]repositories.BusinessOwner), args.Error(1)
}

func (m *MockBusinessRepository) Exists(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBusinessRepository) Create(ctx context.Context, business *models.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *MockBusinessRepository) Update(ctx context.Context, business *models.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *MockBusinessRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBusinessRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBusinessRepository) FindOrphans(ctx context.Context) ([]models.Business, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Business), args.Error(1)
}

func (m *MockBusinessRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdatePayment(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

// MockNotifier is a mock of the notification gateway.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationEmail(ctx context.Context, msg notify.VerificationEmail) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockNotifier) SendPasswordResetEmail(ctx context.Context, msg notify.PasswordResetEmail) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockNotifier) SendOrderConfirmationToBuyer(ctx context.Context, msg notify.BuyerConfirmation) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockNotifier) SendOrderNotificationToSeller(ctx context.Context, msg notify.SellerNotification) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockNotifier) VerifyToken(ctx context.Context, token string) (*notify.TokenVerification, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.TokenVerification), args.Error(1)
}

func (m *MockNotifier) ClearToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

// MockMailer is a mock mail.Sender.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMailer) Enabled() bool {
	return m.Called().Bool(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter repositories.CatalogFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) FindFirst(ctx context.Context, ids []uint) (*models.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

// MockCartItemRepository is a mock implementation of repositories.CartItemRepository.
type MockCartItemRepository struct {
	mock.Mock
}

func (m *MockCartItemRepository) List(ctx context.Context, pageID *string) ([]models.CartItem, error) {
	args := m.Called(ctx, pageID)
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartItemRepository) GetByID(ctx context.Context, id string) (*models.CartItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartItemRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartItemRepository) Create(ctx context.Context, item *models.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCartItemRepository) Update(ctx context.Context, item *models.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCartItemRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCartItemRepository) ListStorefront(ctx context.Context, filter repositories.CatalogFilter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockCartItemRepository) FindFirstWithPage(ctx context.Context, ids []string) (*models.CartItem, *models.Page, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.CartItem), args.Get(1).(*models.Page), args.Error(2)
}
