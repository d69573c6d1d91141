package services

import (
	"context"

	"petitshop/internal/notify"
)

// Notifier is the notification gateway as seen by the services.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, msg notify.VerificationEmail) error
	SendPasswordResetEmail(ctx context.Context, msg notify.PasswordResetEmail) error
	SendOrderConfirmationToBuyer(ctx context.Context, msg notify.BuyerConfirmation) error
	SendOrderNotificationToSeller(ctx context.Context, msg notify.SellerNotification) error
	VerifyToken(ctx context.Context, token string) (*notify.TokenVerification, error)
	ClearToken(ctx context.Context, token string) error
}

// EventPublisher publishes domain events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
