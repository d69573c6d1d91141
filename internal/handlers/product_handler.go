package handlers

import (
	"log/slog"

	"petitshop/internal/middleware"
	"petitshop/internal/models"
	"petitshop/internal/repositories"
	"petitshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the product listing.
type ProductHandler struct {
	service  *services.ProductService
	tokens   middleware.TokenValidator
	validate *validator.Validate
	log      *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, tokens middleware.TokenValidator, log *slog.Logger) *ProductHandler {
	return &ProductHandler{service: service, tokens: tokens, validate: validator.New(), log: log}
}

func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Get("/", h.HandleList)
	products.Post("/", middleware.AuthRequired(h.tokens, h.log), middleware.RequireRole(models.RoleSeller), h.HandleCreate)
}

// HandleList returns storefront items followed by catalog products.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	businessID, err := queryUint(c, "businessId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	listings, err := h.service.List(c.UserContext(), repositories.CatalogFilter{
		Category:   c.Query("category"),
		BusinessID: businessID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	views := make([]models.ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, l.View())
	}
	return c.JSON(views)
}

// ProductRequest is a new catalog product.
type ProductRequest struct {
	Title      string          `json:"title" validate:"required,max=200"`
	Price      decimal.Decimal `json:"price"`
	Category   string          `json:"category" validate:"max=100"`
	Image      *string         `json:"image"`
	BusinessID uint            `json:"businessId" validate:"required"`
}

func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req ProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	product, err := h.service.Create(c.UserContext(), *middleware.IdentityFrom(c), services.ProductInput{
		Title:      req.Title,
		Price:      req.Price,
		Category:   req.Category,
		Image:      req.Image,
		BusinessID: req.BusinessID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}
