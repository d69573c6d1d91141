package handlers

import (
	"log/slog"

	"petitshop/internal/middleware"
	"petitshop/internal/models"
	"petitshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BusinessHandler handles HTTP requests for storefronts.
type BusinessHandler struct {
	service  *services.BusinessService
	tokens   middleware.TokenValidator
	validate *validator.Validate
	log      *slog.Logger
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(service *services.BusinessService, tokens middleware.TokenValidator, log *slog.Logger) *BusinessHandler {
	return &BusinessHandler{service: service, tokens: tokens, validate: validator.New(), log: log}
}

// RegisterRoutes registers /businesses, /management/businesses and /admin.
func (h *BusinessHandler) RegisterRoutes(router fiber.Router) {
	sellerOnly := []fiber.Handler{middleware.AuthRequired(h.tokens, h.log), middleware.RequireRole(models.RoleSeller)}

	businesses := router.Group("/businesses")
	businesses.Get("/", h.HandleList)
	businesses.Post("/merchant-id", h.HandleResolveMerchantID)
	businesses.Get("/:id", h.HandleGet)
	businesses.Post("/", append(sellerOnly, h.HandleCreate)...)
	businesses.Put("/:id", append(sellerOnly, h.HandleUpdate)...)
	businesses.Delete("/:id", append(sellerOnly, h.HandleDelete)...)

	router.Get("/management/businesses", append(sellerOnly, h.HandleListOwned)...)

	admin := router.Group("/admin")
	admin.Post("/delete-all-businesses", h.HandleDeleteAll)
	admin.Post("/reconcile-orphans", h.HandleReconcileOrphans)
}

// BusinessRequest is the client-editable part of a business. An ownerId in the body is ignored.
type BusinessRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
	Country  string `json:"country" validate:"max=100"`
	City     string `json:"city" validate:"max=100"`
}

func (r BusinessRequest) input() services.BusinessInput {
	return services.BusinessInput{Name: r.Name, Category: r.Category, Country: r.Country, City: r.City}
}

func (h *BusinessHandler) HandleList(c *fiber.Ctx) error {
	ownerID, err := queryUint(c, "ownerId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	businesses, err := h.service.List(c.UserContext(), ownerID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(businesses)
}

func (h *BusinessHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	business, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(business)
}

func (h *BusinessHandler) HandleListOwned(c *fiber.Ctx) error {
	businesses, err := h.service.ListOwned(c.UserContext(), *middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(businesses)
}

func (h *BusinessHandler) HandleCreate(c *fiber.Ctx) error {
	var req BusinessRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	business, err := h.service.Create(c.UserContext(), *middleware.IdentityFrom(c), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(business)
}

func (h *BusinessHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req BusinessRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	business, err := h.service.Update(c.UserContext(), *middleware.IdentityFrom(c), id, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(business)
}

func (h *BusinessHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.service.Delete(c.UserContext(), *middleware.IdentityFrom(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MerchantLookupRequest lists the item ids of a cart, as numbers or strings.
type MerchantLookupRequest struct {
	ItemIDs flexibleIDs `json:"itemIds"`
}

func (h *BusinessHandler) HandleResolveMerchantID(c *fiber.Ctx) error {
	var req MerchantLookupRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.service.ResolveMerchantID(c.UserContext(), req.ItemIDs)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(res)
}

const adminSecretHeader = "X-Admin-Secret"

func (h *BusinessHandler) HandleDeleteAll(c *fiber.Ctx) error {
	n, err := h.service.DeleteAll(c.UserContext(), c.Get(adminSecretHeader))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}

func (h *BusinessHandler) HandleReconcileOrphans(c *fiber.Ctx) error {
	var purge *bool
	if raw := c.Query("purge"); raw != "" {
		v := c.QueryBool("purge")
		purge = &v
	}
	report, err := h.service.ReconcileOrphans(c.UserContext(), c.Get(adminSecretHeader), purge)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(report)
}
