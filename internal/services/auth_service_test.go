package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"petitshop/internal/apperrors"
	"petitshop/internal/logs"
	"petitshop/internal/mail"
	"petitshop/internal/models"
	"petitshop/internal/notify"
	"petitshop/internal/repositories"
	"petitshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	users    *MockUserRepository
	notifier *MockNotifier
	mailer   *MockMailer
	tokens   *services.TokenService
	svc      *services.AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    new(MockUserRepository),
		notifier: new(MockNotifier),
		mailer:   new(MockMailer),
		tokens:   services.NewTokenService(testJWTConfig()),
	}
	f.svc = services.NewAuthService(f.users, f.tokens, f.notifier, f.mailer, services.AuthOptions{
		BaseURL:     "http://api.local",
		FrontendURL: "http://shop.local",
	}, logs.Discard())
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_RegisterNewUser(t *testing.T) {
	f := newAuthFixture()
	f.users.On("GetByEmailAndRole", mock.Anything, "a@x.com", models.RoleBuyer).Return(nil, repositories.ErrNotFound).Once()
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 1 }).
		Return(nil).Once()
	f.notifier.On("SendVerificationEmail", mock.Anything, mock.AnythingOfType("notify.VerificationEmail")).
		Return(errors.New("gateway down")).Once()

	res, err := f.svc.Register(context.Background(), models.RoleBuyer, services.RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})

	require.NoError(t, err, "a failed verification email does not fail registration")
	assert.True(t, res.Created)
	assert.False(t, res.EmailSent)
	assert.Equal(t, models.AccountPending, res.User.AccountStatus)
	assert.False(t, res.User.EmailVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("secret1")))
}

func TestAuthService_RegisterExisting(t *testing.T) {
	f := newAuthFixture()
	verified := &models.User{ID: 1, Email: "a@x.com", Role: models.RoleSeller, EmailVerified: true, AccountStatus: models.AccountVerified}
	f.users.On("GetByEmailAndRole", mock.Anything, "a@x.com", models.RoleSeller).Return(verified, nil).Once()

	_, err := f.svc.Register(context.Background(), models.RoleSeller, services.RegisterInput{Email: "a@x.com", Password: "secret1"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	pending := &models.User{ID: 2, Email: "b@x.com", Role: models.RoleSeller, AccountStatus: models.AccountPending}
	f.users.On("GetByEmailAndRole", mock.Anything, "b@x.com", models.RoleSeller).Return(pending, nil).Once()
	f.notifier.On("SendVerificationEmail", mock.Anything, notify.VerificationEmail{UserID: 2, Email: "b@x.com", Role: "Seller"}).Return(nil).Once()

	res, err := f.svc.Register(context.Background(), models.RoleSeller, services.RegisterInput{Email: "b@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, res.EmailSent)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterRequiresCredentials(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), models.RoleBuyer, services.RegisterInput{Email: " "})
	assert.True(t, apperrors.Is(err, apperrors.KindBadRequest))
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	user := &models.User{ID: 4, Name: "Ann", Email: "a@x.com", Role: models.RoleBuyer, PasswordHash: hashed(t, "secret1"), AccountStatus: models.AccountPending}
	f.users.On("GetByEmailAndRole", mock.Anything, "a@x.com", models.RoleBuyer).Return(user, nil)
	f.users.On("GetByEmailAndRole", mock.Anything, "nobody@x.com", models.RoleBuyer).Return(nil, repositories.ErrNotFound)

	_, _, err := f.svc.Login(context.Background(), models.RoleBuyer, "a@x.com", "secret1")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden), "unverified users cannot log in")

	_, _, err = f.svc.Login(context.Background(), models.RoleBuyer, "a@x.com", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	_, _, err = f.svc.Login(context.Background(), models.RoleBuyer, "nobody@x.com", "secret1")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	user.EmailVerified = true
	user.AccountStatus = models.AccountVerified
	token, got, err := f.svc.Login(context.Background(), models.RoleBuyer, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.ID)

	id, err := f.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, id.Role)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	f := newAuthFixture()
	user := &models.User{ID: 9, Email: "a@x.com", Role: models.RoleBuyer, AccountStatus: models.AccountPending}
	f.notifier.On("VerifyToken", mock.Anything, "good").Return(&notify.TokenVerification{Valid: true, UserID: 9}, nil).Once()
	f.notifier.On("VerifyToken", mock.Anything, "bad").Return(&notify.TokenVerification{Valid: false}, nil).Once()
	f.notifier.On("ClearToken", mock.Anything, "good").Return(nil).Once()
	f.users.On("GetByID", mock.Anything, uint(9)).Return(user, nil).Once()
	f.users.On("Update", mock.Anything, user).Return(nil).Once()

	_, err := f.svc.VerifyEmail(context.Background(), "bad")
	assert.True(t, apperrors.Is(err, apperrors.KindBadRequest))

	got, err := f.svc.VerifyEmail(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, got.IsVerified())
	f.notifier.AssertExpectations(t)
}

func TestAuthService_ResendVerification(t *testing.T) {
	f := newAuthFixture()
	user := &models.User{ID: 9, Name: "Ann", Email: "a@x.com", Role: models.RoleBuyer, AccountStatus: models.AccountPending}
	f.users.On("GetByEmailAndRole", mock.Anything, "a@x.com", models.RoleBuyer).Return(user, nil).Once()
	f.users.On("Update", mock.Anything, user).Return(nil).Once()
	f.mailer.On("Send", mock.Anything, mock.AnythingOfType("mail.Message")).Return(nil).Once()
	f.mailer.On("Enabled").Return(false)

	res, err := f.svc.ResendVerification(context.Background(), "a@x.com", models.RoleBuyer)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Contains(t, res.VerifyURL, "http://api.local/api/auth/verify?token=")
	require.NotNil(t, user.VerificationExpiry)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *user.VerificationExpiry, time.Minute)

	sent := f.mailer.Calls[0].Arguments.Get(1).(mail.Message)
	assert.Equal(t, "a@x.com", sent.ToEmail)
}

func TestAuthService_ForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	f := newAuthFixture()
	f.users.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, repositories.ErrNotFound).Once()
	assert.NoError(t, f.svc.ForgotPassword(context.Background(), "ghost@x.com"))

	user := &models.User{ID: 3, Name: "Ann", Email: "a@x.com"}
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()
	f.users.On("Update", mock.Anything, user).Return(nil).Once()
	f.notifier.On("SendPasswordResetEmail", mock.Anything, mock.AnythingOfType("notify.PasswordResetEmail")).
		Return(errors.New("gateway down")).Once()
	assert.NoError(t, f.svc.ForgotPassword(context.Background(), "a@x.com"))

	msg := f.notifier.Calls[0].Arguments.Get(1).(notify.PasswordResetEmail)
	assert.Contains(t, msg.ResetURL, "http://shop.local/auth/reset-password?token=")
	require.NotNil(t, user.VerificationToken)
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newAuthFixture()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	expired := &models.User{ID: 1, VerificationExpiry: &past}
	valid := &models.User{ID: 2, VerificationExpiry: &future}
	f.users.On("GetByVerificationToken", mock.Anything, "old").Return(expired, nil).Once()
	f.users.On("GetByVerificationToken", mock.Anything, "unknown").Return(nil, repositories.ErrNotFound).Once()
	f.users.On("GetByVerificationToken", mock.Anything, "fresh").Return(valid, nil).Once()
	f.users.On("Update", mock.Anything, valid).Return(nil).Once()

	assert.True(t, apperrors.Is(f.svc.ResetPassword(context.Background(), "fresh", "123"), apperrors.KindBadRequest))
	assert.True(t, apperrors.Is(f.svc.ResetPassword(context.Background(), "old", "newpass"), apperrors.KindBadRequest))
	assert.True(t, apperrors.Is(f.svc.ResetPassword(context.Background(), "unknown", "newpass"), apperrors.KindBadRequest))

	require.NoError(t, f.svc.ResetPassword(context.Background(), "fresh", "newpass"))
	assert.Nil(t, valid.VerificationToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(valid.PasswordHash), []byte("newpass")))
}

func TestAuthService_MerchantID(t *testing.T) {
	f := newAuthFixture()
	sellerUser := &models.User{ID: 7, Role: models.RoleSeller}
	f.users.On("GetByID", mock.Anything, uint(7)).Return(sellerUser, nil)
	f.users.On("Update", mock.Anything, sellerUser).Return(nil).Once()

	_, err := f.svc.SetMerchantID(context.Background(), services.Identity{UserID: 7, Role: models.RoleBuyer}, "M")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = f.svc.SetMerchantID(context.Background(), services.Identity{UserID: 7, Role: models.RoleSeller}, "  ")
	assert.True(t, apperrors.Is(err, apperrors.KindBadRequest))

	_, err = f.svc.SetMerchantID(context.Background(), services.Identity{UserID: 7, Role: models.RoleSeller}, " M-7 ")
	require.NoError(t, err)

	got, err := f.svc.MerchantID(context.Background(), services.Identity{UserID: 7, Role: models.RoleSeller})
	require.NoError(t, err)
	assert.Equal(t, "M-7", got)
}
