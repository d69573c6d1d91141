package handlers

import (
	"html"
	"log/slog"
	"strings"

	"petitshop/internal/apperrors"
	"petitshop/internal/middleware"
	"petitshop/internal/models"
	"petitshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for accounts and authentication.
type AuthHandler struct {
	authService *services.AuthService
	tokens      middleware.TokenValidator
	validate    *validator.Validate
	log         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tokens middleware.TokenValidator, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		validate:    validator.New(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes under /auth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	auth := router.Group("/auth")
	requireAuth := middleware.AuthRequired(h.tokens, h.log)

	for _, role := range []models.Role{models.RoleBuyer, models.RoleSeller} {
		group := auth.Group("/" + roleSegment(role))
		group.Post("/register", h.HandleRegister(role))
		group.Post("/login", h.HandleLogin(role))
		group.Put("/profile", requireAuth, h.HandleUpdateProfile(role))
	}

	auth.Get("/verify-email", h.HandleVerifyEmail)
	auth.Get("/verify", h.HandleVerifyLocal)
	auth.Post("/resend-verification", h.HandleResendVerification)
	auth.Post("/forgot-password", h.HandleForgotPassword)
	auth.Post("/reset-password", h.HandleResetPassword)

	merchant := auth.Group("/seller/paypal-merchant", requireAuth, middleware.RequireRole(models.RoleSeller))
	merchant.Put("/", h.HandleSetMerchantID)
	merchant.Get("/", h.HandleGetMerchantID)
}

func roleSegment(role models.Role) string {
	if role == models.RoleSeller {
		return "seller"
	}
	return "buyer"
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister registers a buyer or seller account.
func (h *AuthHandler) HandleRegister(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := bind(c, h.validate, &req); err != nil {
			return respondError(c, h.log, err)
		}

		res, err := h.authService.Register(c.UserContext(), role, services.RegisterInput{
			Name: req.Name, Email: req.Email, Password: req.Password,
		})
		if err != nil {
			return respondError(c, h.log, err)
		}

		status := fiber.StatusCreated
		message := "Registration successful. Please check your email to verify your account."
		if !res.Created {
			status = fiber.StatusOK
			message = "Account already registered but not verified. A new verification email has been sent."
		}
		return c.Status(status).JSON(fiber.Map{
			"id":        res.User.ID,
			"email":     res.User.Email,
			"message":   message,
			"emailSent": res.EmailSent,
		})
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user for role and issues a JWT.
func (h *AuthHandler) HandleLogin(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := bind(c, h.validate, &req); err != nil {
			return respondError(c, h.log, err)
		}

		token, user, err := h.authService.Login(c.UserContext(), role, req.Email, req.Password)
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
				"role":  user.Role,
			},
		})
	}
}

// ProfileRequest represents the editable profile fields.
type ProfileRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	PictureURL string `json:"pictureUrl"`
}

func (h *AuthHandler) HandleUpdateProfile(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ProfileRequest
		if err := bind(c, h.validate, &req); err != nil {
			return respondError(c, h.log, err)
		}

		user, err := h.authService.UpdateProfile(c.UserContext(), *middleware.IdentityFrom(c), role, services.ProfileInput{
			Name: req.Name, Email: req.Email,
		})
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"pictureUrl": req.PictureURL,
		})
	}
}

// HandleVerifyEmail confirms a gateway-issued token and renders a result page.
func (h *AuthHandler) HandleVerifyEmail(c *fiber.Ctx) error {
	user, err := h.authService.VerifyEmail(c.UserContext(), c.Query("token"))
	return h.verificationPage(c, user, err)
}

// HandleVerifyLocal confirms a token issued by resend-verification.
func (h *AuthHandler) HandleVerifyLocal(c *fiber.Ctx) error {
	user, err := h.authService.VerifyLocalToken(c.UserContext(), c.Query("token"))
	return h.verificationPage(c, user, err)
}

func (h *AuthHandler) verificationPage(c *fiber.Ctx, user *models.User, err error) error {
	c.Type("html")
	if err != nil {
		status := statusOf(err)
		if status >= fiber.StatusInternalServerError {
			h.log.ErrorContext(c.UserContext(), "email verification failed", slog.Any("error", err))
		}
		return c.Status(status).SendString(page("Verification failed", html.EscapeString(apperrors.Message(err))))
	}
	return c.SendString(page("Email verified",
		"Thank you "+html.EscapeString(user.Name)+", your email is verified. You can now log in."))
}

func page(title, body string) string {
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" + html.EscapeString(title) +
		"</title></head><body><h1>" + html.EscapeString(title) + "</h1><p>" + body + "</p></body></html>"
}

// ResendRequest asks for a new verification link.
type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

func (h *AuthHandler) HandleResendVerification(c *fiber.Ctx) error {
	var req ResendRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Role must be Buyer or Seller"})
	}

	res, err := h.authService.ResendVerification(c.UserContext(), req.Email, role)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if res.AlreadyVerified {
		return c.JSON(fiber.Map{"message": "Already verified"})
	}
	body := fiber.Map{"message": "Verification email sent", "verifyUrl": res.VerifyURL}
	if res.Token != "" {
		body["token"] = res.Token
	}
	return c.JSON(body)
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "If an account with that email exists, a password reset link has been sent."})
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.authService.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Password has been reset successfully"})
}

// MerchantRequest sets the seller's merchant id. merchantId is accepted as a shorter alias.
type MerchantRequest struct {
	PayPalMerchantID string `json:"payPalMerchantId"`
	MerchantID       string `json:"merchantId"`
}

func (r MerchantRequest) value() string {
	if strings.TrimSpace(r.PayPalMerchantID) != "" {
		return r.PayPalMerchantID
	}
	return r.MerchantID
}

func (h *AuthHandler) HandleSetMerchantID(c *fiber.Ctx) error {
	var req MerchantRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	user, err := h.authService.SetMerchantID(c.UserContext(), *middleware.IdentityFrom(c), req.value())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Merchant id saved", "payPalMerchantId": user.MerchantID()})
}

func (h *AuthHandler) HandleGetMerchantID(c *fiber.Ctx) error {
	merchantID, err := h.authService.MerchantID(c.UserContext(), *middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"payPalMerchantId": merchantID, "configured": merchantID != ""})
}
