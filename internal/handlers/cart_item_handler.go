package handlers

import (
	"log/slog"

	"petitshop/internal/middleware"
	"petitshop/internal/models"
	"petitshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CartItemHandler handles HTTP requests for the items placed on pages.
type CartItemHandler struct {
	service  *services.CartItemService
	tokens   middleware.TokenValidator
	validate *validator.Validate
	log      *slog.Logger
}

func NewCartItemHandler(service *services.CartItemService, tokens middleware.TokenValidator, log *slog.Logger) *CartItemHandler {
	return &CartItemHandler{service: service, tokens: tokens, validate: validator.New(), log: log}
}

func (h *CartItemHandler) RegisterRoutes(router fiber.Router) {
	sellerOnly := []fiber.Handler{middleware.AuthRequired(h.tokens, h.log), middleware.RequireRole(models.RoleSeller)}

	items := router.Group("/cartitems")
	items.Get("/", h.HandleList)
	items.Get("/:id", h.HandleGet)
	items.Post("/", append(sellerOnly, h.HandleCreate)...)
	items.Put("/:id", append(sellerOnly, h.HandleUpsert)...)
	items.Delete("/:id", append(sellerOnly, h.HandleDelete)...)
}

// CartItemRequest is an item as sent by the client.
type CartItemRequest struct {
	ID       string          `json:"id" validate:"max=64"`
	Title    string          `json:"title" validate:"required,max=200"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category" validate:"max=100"`
	Image    *string         `json:"image"`
	PageID   string          `json:"pageId" validate:"required,max=64"`
}

func (r CartItemRequest) input() services.CartItemInput {
	return services.CartItemInput{
		ID: r.ID, Title: r.Title, Price: r.Price, Category: r.Category, Image: r.Image, PageID: r.PageID,
	}
}

func (h *CartItemHandler) HandleList(c *fiber.Ctx) error {
	var pageID *string
	if v := c.Query("pageId"); v != "" {
		pageID = &v
	}
	items, err := h.service.List(c.UserContext(), pageID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(items)
}

func (h *CartItemHandler) HandleGet(c *fiber.Ctx) error {
	item, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(item)
}

func (h *CartItemHandler) HandleCreate(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	item, err := h.service.Create(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CartItemHandler) HandleUpsert(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	item, created, err := h.service.Upsert(c.UserContext(), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(item)
	}
	return c.JSON(item)
}

func (h *CartItemHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
