// Package server assembles the HTTP application from its dependencies.
package server

import (
	"context"
	"errors"
	"log/slog"

	"petitshop/internal/config"
	"petitshop/internal/handlers"
	"petitshop/internal/mail"
	"petitshop/internal/repositories"
	"petitshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Deps are the process-level collaborators the application is built from.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *slog.Logger
	Notifier services.Notifier
	Mailer   mail.Sender
	// Events may be nil, which disables event publishing.
	Events services.EventPublisher
	// AccessLog enables the per-request access log.
	AccessLog bool
}

// New wires repositories, services and handlers into a Fiber app.
func New(d Deps) *fiber.App {
	cfg := d.Config

	users := repositories.NewGORMUserRepository(d.DB)
	businesses := repositories.NewGORMBusinessRepository(d.DB)
	pages := repositories.NewGORMPageRepository(d.DB)
	items := repositories.NewGORMCartItemRepository(d.DB)
	products := repositories.NewGORMProductRepository(d.DB)
	orders := repositories.NewGORMOrderRepository(d.DB)

	tokens := services.NewTokenService(cfg.JWT)
	authService := services.NewAuthService(users, tokens, d.Notifier, d.Mailer, services.AuthOptions{
		BaseURL:     cfg.App.PublicURL(),
		FrontendURL: cfg.App.FrontendURL,
	}, d.Log)
	businessService := services.NewBusinessService(businesses, users, products, items, services.AdminPolicy{
		Development:    cfg.App.IsDevelopment(),
		AllowDeleteAll: cfg.Admin.AllowDeleteAll,
		Secret:         cfg.Admin.Secret,
		PurgeOrphans:   cfg.Cleanup.DeleteOrphanedBusinesses,
	}, d.Log)
	pageService := services.NewPageService(pages, businesses)
	cartItemService := services.NewCartItemService(items, pages)
	productService := services.NewProductService(products, items, businesses)
	orderService := services.NewOrderService(orders, businesses, users, d.Notifier, d.Events, cfg.Payment.Currency, d.Log)

	app := fiber.New(fiber.Config{
		AppName:      "petitshop",
		ErrorHandler: errorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	handlers.NewAuthHandler(authService, tokens, d.Log).RegisterRoutes(api)
	handlers.NewBusinessHandler(businessService, tokens, d.Log).RegisterRoutes(api)
	handlers.NewPageHandler(pageService, tokens, d.Log).RegisterRoutes(api)
	handlers.NewCartItemHandler(cartItemService, tokens, d.Log).RegisterRoutes(api)
	handlers.NewProductHandler(productService, tokens, d.Log).RegisterRoutes(api)
	handlers.NewOrderHandler(orderService, tokens, d.Log).RegisterRoutes(api)

	return app
}

// ReportOrphans runs the startup orphan scan and returns how many businesses lack an owner.
func ReportOrphans(ctx context.Context, d Deps) (int, error) {
	svc := services.NewBusinessService(
		repositories.NewGORMBusinessRepository(d.DB),
		repositories.NewGORMUserRepository(d.DB),
		repositories.NewGORMProductRepository(d.DB),
		repositories.NewGORMCartItemRepository(d.DB),
		services.AdminPolicy{},
		d.Log,
	)
	orphans, err := svc.ReportOrphans(ctx)
	if err != nil {
		return 0, err
	}
	return len(orphans), nil
}

// errorHandler answers errors that escape the handlers, including unknown routes and recovered panics.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("method", c.Method()), slog.String("path", c.Path()), slog.Any("error", err))
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
