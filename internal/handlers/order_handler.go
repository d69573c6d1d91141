package handlers

import (
	"encoding/json"
	"log/slog"
	"strings"

	"petitshop/internal/middleware"
	"petitshop/internal/models"
	"petitshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for orders and payments.
type OrderHandler struct {
	service  *services.OrderService
	tokens   middleware.TokenValidator
	validate *validator.Validate
	log      *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, tokens middleware.TokenValidator, log *slog.Logger) *OrderHandler {
	return &OrderHandler{service: service, tokens: tokens, validate: validator.New(), log: log}
}

// RegisterRoutes registers the order routes. Order creation is open to anonymous buyers.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orders := router.Group("/orders")
	orders.Post("/", middleware.OptionalAuth(h.tokens), h.HandleCreateOrder)
	orders.Post("/paypal/create", middleware.OptionalAuth(h.tokens), h.HandleCreatePaymentIntent)
	orders.Post("/paypal/capture", h.HandleCapturePayment)
	orders.Get("/:id", middleware.AuthRequired(h.tokens, h.log), h.HandleGetOrder)
}

// itemsPayload accepts the line items either as a JSON array or as a JSON-encoded string.
type itemsPayload string

func (p *itemsPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = itemsPayload(s)
		return nil
	}
	*p = itemsPayload(data)
	return nil
}

// OrderRequest is the body of both order creation endpoints. The shipping address arrives
// either as flat shipping* fields or nested under shippingInfo; the flat form wins.
type OrderRequest struct {
	Items        itemsPayload         `json:"items"`
	ItemsJSON    itemsPayload         `json:"itemsJson"`
	Total        decimal.Decimal      `json:"total"`
	Shipping     *models.ShippingInfo `json:"shippingInfo"`
	ShippingType *string              `json:"shippingType"`

	ShippingFullName   *string `json:"shippingFullName"`
	ShippingAddress1   *string `json:"shippingAddress1"`
	ShippingAddress2   *string `json:"shippingAddress2"`
	ShippingCity       *string `json:"shippingCity"`
	ShippingState      *string `json:"shippingState"`
	ShippingPostalCode *string `json:"shippingPostalCode"`
	ShippingCountry    *string `json:"shippingCountry"`
	ShippingPhone      *string `json:"shippingPhone"`
}

func (r OrderRequest) shipping() *models.ShippingInfo {
	flat := models.ShippingInfo{
		FullName:   r.ShippingFullName,
		Address1:   r.ShippingAddress1,
		Address2:   r.ShippingAddress2,
		City:       r.ShippingCity,
		State:      r.ShippingState,
		PostalCode: r.ShippingPostalCode,
		Country:    r.ShippingCountry,
		Phone:      r.ShippingPhone,
	}
	if !flat.IsEmpty() {
		return &flat
	}
	return r.Shipping
}

func (r OrderRequest) input() services.OrderInput {
	items := r.ItemsJSON
	if strings.TrimSpace(string(items)) == "" {
		items = r.Items
	}
	return services.OrderInput{
		ItemsJSON:    string(items),
		Total:        r.Total,
		Shipping:     r.shipping(),
		ShippingType: r.ShippingType,
	}
}

// HandleCreateOrder stores an order without payment.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req OrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.CreateOrder(c.UserContext(), middleware.IdentityFrom(c), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleCreatePaymentIntent stores a PENDING order and returns the merchants to pay.
func (h *OrderHandler) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var req OrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	intent, err := h.service.CreatePaymentIntent(c.UserContext(), middleware.IdentityFrom(c), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(intent)
}

// CaptureRequest is the processor result relayed by the client.
// payerId and payPalCaptureId are accepted as aliases of payPalPayerId and captureId.
type CaptureRequest struct {
	OrderID         uint   `json:"orderId" validate:"required"`
	PayPalOrderID   string `json:"payPalOrderId"`
	PayPalPayerID   string `json:"payPalPayerId"`
	PayerID         string `json:"payerId"`
	Status          string `json:"status" validate:"required"`
	CaptureID       string `json:"captureId"`
	PayPalCaptureID string `json:"payPalCaptureId"`
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// HandleCapturePayment records the payment result and notifies buyer and sellers on success.
func (h *OrderHandler) HandleCapturePayment(c *fiber.Ctx) error {
	var req CaptureRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.CapturePayment(c.UserContext(), services.CaptureInput{
		OrderID:       req.OrderID,
		PayPalOrderID: req.PayPalOrderID,
		PayerID:       firstNonBlank(req.PayPalPayerID, req.PayerID),
		Status:        models.PaymentStatus(req.Status),
		CaptureID:     firstNonBlank(req.CaptureID, req.PayPalCaptureID),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Payment captured successfully",
		"order": fiber.Map{
			"id":                  order.ID,
			"total":               order.Total,
			"payPalPaymentStatus": order.PayPalPaymentStatus,
			"createdAt":           order.CreatedAt,
		},
	})
}

// HandleGetOrder returns an order to its buyer or to a seller.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.GetOrder(c.UserContext(), middleware.IdentityFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(order)
}
