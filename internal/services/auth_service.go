package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"petitshop/internal/apperrors"
	"petitshop/internal/mail"
	"petitshop/internal/models"
	"petitshop/internal/notify"
	"petitshop/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

const (
	verificationTokenBytes = 32
	verificationTokenTTL   = 24 * time.Hour
	resetTokenBytes        = 48
	resetTokenTTL          = 2 * time.Hour
	minPasswordLength      = 6
)

// AuthOptions carries the URLs used to build links in emails.
type AuthOptions struct {
	BaseURL     string
	FrontendURL string
}

// AuthService handles registration, login and the account email flows.
type AuthService struct {
	users    repositories.UserRepository
	tokens   *TokenService
	notifier Notifier
	mailer   mail.Sender
	opts     AuthOptions
	log      *slog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, tokens *TokenService, notifier Notifier, mailer mail.Sender, opts AuthOptions, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		mailer:   mailer,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult tells the caller what registration did.
type RegisterResult struct {
	User      *models.User
	Created   bool
	EmailSent bool
}

// Register creates an unverified account for role, or re-sends the verification email when an
// unverified account with the same email and role already exists.
func (s *AuthService) Register(ctx context.Context, role models.Role, in RegisterInput) (*RegisterResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.BadRequest("Email and password are required")
	}

	existing, err := s.users.GetByEmailAndRole(ctx, email, role)
	switch {
	case err == nil:
		if existing.IsVerified() {
			return nil, apperrors.Conflict("A verified %s account with this email already exists", strings.ToLower(role.String()))
		}
		return &RegisterResult{User: existing, EmailSent: s.sendVerification(ctx, existing)}, nil
	case !repositories.IsNotFound(err):
		return nil, apperrors.Internal(err, "Failed to register user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to hash password")
	}

	user := &models.User{
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		AccountStatus: models.AccountPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		return nil, apperrors.Internal(err, "Failed to register user")
	}

	s.log.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)), slog.String("role", role.String()))
	return &RegisterResult{User: user, Created: true, EmailSent: s.sendVerification(ctx, user)}, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) bool {
	err := s.notifier.SendVerificationEmail(ctx, notify.VerificationEmail{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
		Name:   user.Name,
	})
	if err != nil {
		s.log.WarnContext(ctx, "verification email not sent", slog.Uint64("user_id", uint64(user.ID)), slog.Any("error", err))
		return false
	}
	return true
}

// Login checks the credentials for role and returns a signed token.
func (s *AuthService) Login(ctx context.Context, role models.Role, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		if repositories.IsNotFound(err) {
			return "", nil, apperrors.Unauthorized("Invalid credentials")
		}
		return "", nil, apperrors.Internal(err, "Failed to log in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.Unauthorized("Invalid credentials")
	}
	if !user.IsVerified() {
		return "", nil, apperrors.Forbidden("Please verify your email before logging in")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, apperrors.Internal(err, "Failed to generate token")
	}
	return token, user, nil
}

// ProfileInput holds the editable profile fields. Empty fields are left unchanged.
type ProfileInput struct {
	Name  string
	Email string
}

// UpdateProfile edits the caller's own profile. The path role must match the credential.
func (s *AuthService) UpdateProfile(ctx context.Context, id Identity, role models.Role, in ProfileInput) (*models.User, error) {
	if id.Role != role {
		return nil, apperrors.Forbidden("Only %s accounts can update this profile", strings.ToLower(role.String()))
	}
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err, "Failed to load user")
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		user.Email = strings.ToLower(email)
	}
	if err := s.users.Update(ctx, user); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, apperrors.Conflict("Email is already used by another account")
		}
		return nil, apperrors.Internal(err, "Failed to update profile")
	}
	return user, nil
}

// VerifyEmail confirms a gateway-issued verification token and activates the account.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.BadRequest("Verification token is required")
	}
	result, err := s.notifier.VerifyToken(ctx, token)
	if err != nil {
		return nil, apperrors.Internal(err, "Could not reach the verification service")
	}
	if !result.Valid {
		return nil, apperrors.BadRequest("Invalid or expired verification token")
	}

	user, err := s.users.GetByID(ctx, result.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err, "Failed to load user")
	}
	if err := s.markVerified(ctx, user); err != nil {
		return nil, err
	}

	if err := s.notifier.ClearToken(ctx, token); err != nil {
		s.log.WarnContext(ctx, "verification token not cleared", slog.Any("error", err))
	}
	return user, nil
}

// VerifyLocalToken confirms a token issued by ResendVerification.
func (s *AuthService) VerifyLocalToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.BadRequest("Verification token is required")
	}
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.BadRequest("Invalid or expired verification token")
		}
		return nil, apperrors.Internal(err, "Failed to load user")
	}
	if user.VerificationExpiry == nil || s.now().After(*user.VerificationExpiry) {
		return nil, apperrors.BadRequest("Invalid or expired verification token")
	}
	if err := s.markVerified(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) markVerified(ctx context.Context, user *models.User) error {
	user.EmailVerified = true
	user.AccountStatus = models.AccountVerified
	user.VerificationToken = nil
	user.VerificationExpiry = nil
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.Internal(err, "Failed to verify user")
	}
	s.log.InfoContext(ctx, "email verified", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

// ResendResult describes a resend-verification call.
type ResendResult struct {
	AlreadyVerified bool
	VerifyURL       string
	// Token is only returned when mail delivery is disabled.
	Token string
}

// ResendVerification issues a fresh local verification token and mails the link.
func (s *AuthService) ResendVerification(ctx context.Context, email string, role models.Role) (*ResendResult, error) {
	if strings.TrimSpace(email) == "" || !role.IsValid() {
		return nil, apperrors.BadRequest("Email and role are required")
	}
	user, err := s.users.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err, "Failed to load user")
	}
	if user.IsVerified() {
		return &ResendResult{AlreadyVerified: true}, nil
	}

	token, err := randomToken(verificationTokenBytes)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to generate token")
	}
	expiry := s.now().Add(verificationTokenTTL)
	user.VerificationToken = &token
	user.VerificationExpiry = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err, "Failed to save verification token")
	}

	verifyURL := s.opts.BaseURL + "/api/auth/verify?token=" + url.QueryEscape(token)
	if err := s.mailer.Send(ctx, mail.VerificationMessage(user.Email, user.Name, verifyURL)); err != nil {
		s.log.WarnContext(ctx, "verification mail not sent", slog.Uint64("user_id", uint64(user.ID)), slog.Any("error", err))
	}

	result := &ResendResult{VerifyURL: verifyURL}
	if !s.mailer.Enabled() {
		result.Token = token
	}
	return result, nil
}

// ForgotPassword starts a password reset. It never reveals whether the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.BadRequest("Email is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !repositories.IsNotFound(err) {
			s.log.ErrorContext(ctx, "forgot password lookup failed", slog.Any("error", err))
		}
		return nil
	}

	token, err := randomToken(resetTokenBytes)
	if err != nil {
		s.log.ErrorContext(ctx, "reset token generation failed", slog.Any("error", err))
		return nil
	}
	expiry := s.now().Add(resetTokenTTL)
	user.VerificationToken = &token
	user.VerificationExpiry = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		s.log.ErrorContext(ctx, "reset token not saved", slog.Any("error", err))
		return nil
	}

	err = s.notifier.SendPasswordResetEmail(ctx, notify.PasswordResetEmail{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		ResetURL: s.opts.FrontendURL + "/auth/reset-password?token=" + url.QueryEscape(token),
	})
	if err != nil {
		s.log.WarnContext(ctx, "password reset email not sent", slog.Uint64("user_id", uint64(user.ID)), slog.Any("error", err))
	}
	return nil
}

// ResetPassword replaces the password of the account holding token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.BadRequest("Token and new password are required")
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.BadRequest("Password must be at least %d characters", minPasswordLength)
	}
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.BadRequest("Invalid or expired reset token")
		}
		return apperrors.Internal(err, "Failed to load user")
	}
	if user.VerificationExpiry == nil || s.now().After(*user.VerificationExpiry) {
		return apperrors.BadRequest("Invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal(err, "Failed to hash password")
	}
	user.PasswordHash = string(hash)
	user.VerificationToken = nil
	user.VerificationExpiry = nil
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.Internal(err, "Failed to reset password")
	}
	return nil
}

// SetMerchantID stores the seller's payment-processor merchant id.
func (s *AuthService) SetMerchantID(ctx context.Context, id Identity, merchantID string) (*models.User, error) {
	if id.Role != models.RoleSeller {
		return nil, apperrors.Forbidden("Only sellers can configure a merchant id")
	}
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" {
		return nil, apperrors.BadRequest("Merchant id is required")
	}
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err, "Failed to load user")
	}
	user.PayPalMerchantID = &merchantID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err, "Failed to save merchant id")
	}
	return user, nil
}

// MerchantID returns the seller's merchant id, "" when unset.
func (s *AuthService) MerchantID(ctx context.Context, id Identity) (string, error) {
	if id.Role != models.RoleSeller {
		return "", apperrors.Forbidden("Only sellers have a merchant id")
	}
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return "", apperrors.NotFound("User not found")
		}
		return "", apperrors.Internal(err, "Failed to load user")
	}
	return user.MerchantID(), nil
}

// randomToken returns n random bytes, URL-safe base64 encoded.
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
