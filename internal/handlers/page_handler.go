package handlers

import (
	"log/slog"

	"petitshop/internal/middleware"
	"petitshop/internal/models"
	"petitshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PageHandler handles HTTP requests for storefront pages.
type PageHandler struct {
	service  *services.PageService
	tokens   middleware.TokenValidator
	validate *validator.Validate
	log      *slog.Logger
}

func NewPageHandler(service *services.PageService, tokens middleware.TokenValidator, log *slog.Logger) *PageHandler {
	return &PageHandler{service: service, tokens: tokens, validate: validator.New(), log: log}
}

func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	sellerOnly := []fiber.Handler{middleware.AuthRequired(h.tokens, h.log), middleware.RequireRole(models.RoleSeller)}

	pages := router.Group("/pages")
	pages.Get("/", h.HandleList)
	pages.Get("/:id", h.HandleGet)
	pages.Post("/", append(sellerOnly, h.HandleCreate)...)
	pages.Put("/:id", append(sellerOnly, h.HandleUpsert)...)
	pages.Delete("/:id", append(sellerOnly, h.HandleDelete)...)
}

// PageRequest is a page as sent by the client.
type PageRequest struct {
	ID         string `json:"id" validate:"max=64"`
	Title      string `json:"title" validate:"max=200"`
	BusinessID uint   `json:"businessId" validate:"required"`
}

func (r PageRequest) input() services.PageInput {
	return services.PageInput{ID: r.ID, Title: r.Title, BusinessID: r.BusinessID}
}

func (h *PageHandler) HandleList(c *fiber.Ctx) error {
	businessID, err := queryUint(c, "businessId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	pages, err := h.service.List(c.UserContext(), businessID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(pages)
}

func (h *PageHandler) HandleGet(c *fiber.Ctx) error {
	page, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(page)
}

func (h *PageHandler) HandleCreate(c *fiber.Ctx) error {
	var req PageRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	page, err := h.service.Create(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(page)
}

func (h *PageHandler) HandleUpsert(c *fiber.Ctx) error {
	var req PageRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	page, created, err := h.service.Upsert(c.UserContext(), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(page)
	}
	return c.JSON(page)
}

func (h *PageHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
