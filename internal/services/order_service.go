package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petitshop/internal/apperrors"
	"petitshop/internal/models"
	"petitshop/internal/notify"
	"petitshop/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"

	fallbackBuyerName = "Customer"
)

// OrderService runs the order and payment workflow.
type OrderService struct {
	orders     repositories.OrderRepository
	businesses repositories.BusinessRepository
	users      repositories.UserRepository
	notifier   Notifier
	events     EventPublisher
	currency   string
	log        *slog.Logger
}

// NewOrderService creates a new OrderService. events may be nil when no broker is configured.
func NewOrderService(
	orders repositories.OrderRepository,
	businesses repositories.BusinessRepository,
	users repositories.UserRepository,
	notifier Notifier,
	events EventPublisher,
	currency string,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		businesses: businesses,
		users:      users,
		notifier:   notifier,
		events:     events,
		currency:   currency,
		log:        log,
	}
}

// OrderInput is an order as submitted by the client.
type OrderInput struct {
	ItemsJSON    string
	Total        decimal.Decimal
	Shipping     *models.ShippingInfo
	ShippingType *string
}

// OrderEvent is the payload of the order.* events.
type OrderEvent struct {
	OrderID    uint                  `json:"orderId"`
	UserID     *uint                 `json:"userId"`
	Total      decimal.Decimal       `json:"total"`
	Status     *models.PaymentStatus `json:"status"`
	OccurredAt time.Time             `json:"occurredAt"`
}

// CreateOrder stores an order without starting a payment. No email is sent.
func (s *OrderService) CreateOrder(ctx context.Context, buyer *Identity, in OrderInput) (*models.Order, error) {
	items, err := models.ParseLineItems(in.ItemsJSON)
	if err != nil {
		return nil, apperrors.BadRequest("Invalid order items")
	}
	return s.persist(ctx, buyer, in, items, nil)
}

func (s *OrderService) persist(ctx context.Context, buyer *Identity, in OrderInput, items []models.LineItem, status *models.PaymentStatus) (*models.Order, error) {
	if in.Total.IsNegative() {
		return nil, apperrors.BadRequest("Total must not be negative")
	}
	snapshot, err := json.Marshal(items)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to encode order items")
	}

	order := &models.Order{
		ItemsJSON:           string(snapshot),
		Total:               in.Total,
		ShippingType:        in.ShippingType,
		PayPalPaymentStatus: status,
	}
	// Only a credential identifies the buyer; a client-sent buyer id is never trusted.
	if buyer != nil {
		uid := buyer.UserID
		order.UserID = &uid
	}
	if in.Shipping != nil {
		encoded, err := in.Shipping.Encode()
		if err != nil {
			return nil, apperrors.Internal(err, "Failed to encode shipping address")
		}
		order.ShippingAddress = &encoded
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Internal(err, "Failed to create order")
	}
	s.log.InfoContext(ctx, "order created", slog.Uint64("order_id", uint64(order.ID)), slog.String("total", order.Total.String()))
	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

// PaymentIntent is what the client needs to start the processor's checkout.
type PaymentIntent struct {
	OrderID     uint            `json:"orderId"`
	MerchantIDs []string        `json:"merchantIds"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

// CreatePaymentIntent checks that every seller in the order can be paid and stores a PENDING
// order. If any seller lacks a merchant id nothing is stored.
func (s *OrderService) CreatePaymentIntent(ctx context.Context, buyer *Identity, in OrderInput) (*PaymentIntent, error) {
	items, err := models.ParseLineItems(in.ItemsJSON)
	if err != nil || len(items) == 0 {
		return nil, apperrors.BadRequest("Order items are missing or invalid")
	}

	sellerIDs := models.SellerIDs(items)
	sellers, err := s.businesses.FindWithOwners(ctx, sellerIDs)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to load sellers")
	}
	byID := make(map[uint]repositories.BusinessOwner, len(sellers))
	for _, bo := range sellers {
		byID[bo.Business.ID] = bo
	}

	var missing []string
	merchantIDs := make([]string, 0, len(sellerIDs))
	seen := make(map[string]struct{}, len(sellerIDs))
	for _, id := range sellerIDs {
		bo, ok := byID[id]
		if !ok {
			missing = append(missing, fmt.Sprintf("seller %d", id))
			continue
		}
		merchantID := bo.Owner.MerchantID()
		if merchantID == "" {
			missing = append(missing, bo.Business.Name)
			continue
		}
		if _, dup := seen[merchantID]; !dup {
			seen[merchantID] = struct{}{}
			merchantIDs = append(merchantIDs, merchantID)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.BadRequest(
			"The following sellers have not configured PayPal: %s. Please remove their items or try again later.",
			strings.Join(missing, ", "))
	}

	pending := models.PaymentPending
	order, err := s.persist(ctx, buyer, in, items, &pending)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		OrderID:     order.ID,
		MerchantIDs: merchantIDs,
		Total:       order.Total,
		Currency:    s.currency,
	}, nil
}

// CaptureInput is the processor's result for an order.
type CaptureInput struct {
	OrderID       uint
	PayPalOrderID string
	PayerID       string
	Status        models.PaymentStatus
	CaptureID     string
}

// CapturePayment records the processor result on the order. Every status is recorded; only a
// successful one triggers the buyer and seller notifications. Repeated calls overwrite the
// payment fields and notify again.
func (s *OrderService) CapturePayment(ctx context.Context, in CaptureInput) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal(err, "Failed to load order")
	}

	status := in.Status
	order.PayPalOrderID = optional(in.PayPalOrderID)
	order.PayPalPayerID = optional(in.PayerID)
	order.PayPalCaptureID = optional(in.CaptureID)
	order.PayPalPaymentStatus = &status
	if err := s.orders.UpdatePayment(ctx, order); err != nil {
		return nil, apperrors.Internal(err, "Failed to record payment")
	}
	s.log.InfoContext(ctx, "payment recorded",
		slog.Uint64("order_id", uint64(order.ID)), slog.String("status", string(status)))

	if status.IsSuccess() {
		s.notifyParties(ctx, order)
		s.publish(ctx, EventOrderPaid, order)
	}
	return order, nil
}

// notifyParties sends the buyer confirmation and one notification per seller. It never fails.
func (s *OrderService) notifyParties(ctx context.Context, order *models.Order) {
	log := s.log.With(slog.Uint64("order_id", uint64(order.ID)))
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "order notifications aborted", slog.Any("panic", r))
		}
	}()

	items, err := models.ParseLineItems(order.ItemsJSON)
	if err != nil {
		log.ErrorContext(ctx, "order items unreadable, notifications skipped", slog.Any("error", err))
		return
	}
	if len(items) == 0 {
		return
	}

	buyerName := fallbackBuyerName
	buyer := s.resolveBuyer(ctx, log, order)
	if buyer != nil {
		if buyer.Name != "" {
			buyerName = buyer.Name
		}
		err := s.notifier.SendOrderConfirmationToBuyer(ctx, notify.BuyerConfirmation{
			Email:   buyer.Email,
			Name:    buyer.Name,
			OrderID: order.ID,
			Items:   items,
			Total:   order.Total,
		})
		if err != nil {
			log.WarnContext(ctx, "buyer confirmation not sent", slog.Any("error", err))
		}
	}

	for _, group := range models.GroupBySeller(items) {
		bo, err := s.businesses.GetWithOwner(ctx, group.SellerID)
		if err != nil {
			log.WarnContext(ctx, "seller not found, notification skipped",
				slog.Uint64("seller_id", uint64(group.SellerID)), slog.Any("error", err))
			continue
		}
		if bo.Owner == nil || bo.Owner.Email == "" {
			log.WarnContext(ctx, "seller has no reachable owner, notification skipped",
				slog.Uint64("seller_id", uint64(group.SellerID)))
			continue
		}

		sellerName := bo.Owner.Name
		if sellerName == "" {
			sellerName = bo.Business.Name
		}
		err = s.notifier.SendOrderNotificationToSeller(ctx, notify.SellerNotification{
			Email:          bo.Owner.Email,
			SellerName:     sellerName,
			OrderID:        order.ID,
			Items:          group.Items,
			TotalForSeller: group.Subtotal(),
			BuyerName:      buyerName,
		})
		if err != nil {
			log.WarnContext(ctx, "seller notification not sent",
				slog.Uint64("seller_id", uint64(group.SellerID)), slog.Any("error", err))
		}
	}
}

func (s *OrderService) resolveBuyer(ctx context.Context, log *slog.Logger, order *models.Order) *models.User {
	if order.UserID == nil {
		log.InfoContext(ctx, "anonymous order, buyer confirmation skipped")
		return nil
	}
	user, err := s.users.GetByID(ctx, *order.UserID)
	if err != nil {
		log.WarnContext(ctx, "buyer not found, confirmation skipped",
			slog.Uint64("user_id", uint64(*order.UserID)), slog.Any("error", err))
		return nil
	}
	return user
}

// GetOrder returns an order to its buyer or to any seller.
func (s *OrderService) GetOrder(ctx context.Context, viewer *Identity, id uint) (*models.Order, error) {
	if viewer == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal(err, "Failed to load order")
	}

	switch viewer.Role {
	case models.RoleSeller:
		return order, nil
	case models.RoleBuyer:
		if order.UserID != nil && *order.UserID == viewer.UserID {
			return order, nil
		}
		return nil, apperrors.Forbidden("You do not have access to this order")
	default:
		return nil, apperrors.Forbidden("You do not have access to this order")
	}
}

func (s *OrderService) publish(ctx context.Context, routingKey string, order *models.Order) {
	if s.events == nil {
		return
	}
	event := OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Total:      order.Total,
		Status:     order.PayPalPaymentStatus,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, routingKey, event); err != nil {
		s.log.WarnContext(ctx, "order event not published",
			slog.String("event", routingKey), slog.Uint64("order_id", uint64(order.ID)), slog.Any("error", err))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
