// Package notify is the HTTP client of the notification gateway that sends transactional email.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"petitshop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// VerificationEmail asks the gateway to mail a verification link.
type VerificationEmail struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

// PasswordResetEmail asks the gateway to mail a reset link.
type PasswordResetEmail struct {
	UserID   uint   `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ResetURL string `json:"resetUrl"`
}

// BuyerConfirmation is the order confirmation sent to the buyer.
type BuyerConfirmation struct {
	Email   string            `json:"email"`
	Name    string            `json:"name"`
	OrderID uint              `json:"orderId"`
	Items   []models.LineItem `json:"items"`
	Total   decimal.Decimal   `json:"total"`
}

// SellerNotification tells one seller about their part of an order.
type SellerNotification struct {
	Email          string            `json:"email"`
	SellerName     string            `json:"sellerName"`
	OrderID        uint              `json:"orderId"`
	Items          []models.LineItem `json:"items"`
	TotalForSeller decimal.Decimal   `json:"totalForSeller"`
	BuyerName      string            `json:"buyerName"`
}

// TokenVerification is the gateway's answer for a verification token.
type TokenVerification struct {
	Valid  bool   `json:"valid"`
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Gateway calls the notification service under {baseURL}/api/email.
type Gateway struct {
	baseURL string
	timeout time.Duration
	log     *slog.Logger
}

// NewGateway creates a gateway client. baseURL must not end with a slash.
func NewGateway(baseURL string, timeout time.Duration, log *slog.Logger) *Gateway {
	return &Gateway{baseURL: baseURL, timeout: timeout, log: log}
}

func (g *Gateway) endpoint(path string) string {
	return g.baseURL + "/api/email/" + path
}

func (g *Gateway) post(ctx context.Context, path string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	agent := fiber.Post(g.endpoint(path)).JSON(payload).Timeout(g.timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		g.log.WarnContext(ctx, "notification gateway unreachable", slog.String("path", path), slog.Any("error", errs[0]))
		return errors.Wrapf(errs[0], "notification gateway %s", path)
	}
	if code < 200 || code >= 300 {
		g.log.WarnContext(ctx, "notification gateway rejected request",
			slog.String("path", path), slog.Int("status", code), slog.String("body", string(body)))
		return errors.Errorf("notification gateway %s answered %d", path, code)
	}
	g.log.InfoContext(ctx, "notification sent", slog.String("path", path))
	return nil
}

func (g *Gateway) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	return g.post(ctx, "send-verification-email", msg)
}

func (g *Gateway) SendPasswordResetEmail(ctx context.Context, msg PasswordResetEmail) error {
	return g.post(ctx, "send-password-reset-email", msg)
}

func (g *Gateway) SendOrderConfirmationToBuyer(ctx context.Context, msg BuyerConfirmation) error {
	return g.post(ctx, "send-order-confirmation-buyer", msg)
}

func (g *Gateway) SendOrderNotificationToSeller(ctx context.Context, msg SellerNotification) error {
	return g.post(ctx, "send-order-notification-seller", msg)
}

// ClearToken tells the gateway a verification token was consumed.
func (g *Gateway) ClearToken(ctx context.Context, token string) error {
	return g.post(ctx, "clear-token", map[string]string{"token": token})
}

// VerifyToken asks the gateway whether a verification token is valid.
func (g *Gateway) VerifyToken(ctx context.Context, token string) (*TokenVerification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := "verify-token/" + url.PathEscape(token)
	code, body, errs := fiber.Get(g.endpoint(path)).Timeout(g.timeout).Bytes()
	if len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "notification gateway verify-token")
	}
	if code < 200 || code >= 300 {
		return &TokenVerification{Valid: false}, nil
	}
	var result TokenVerification
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("invalid verify-token response: %w", err)
	}
	return &result, nil
}
