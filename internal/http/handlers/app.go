package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"shelfmark/internal/config"
	applog "shelfmark/internal/log"
)

// NewApp assembles the fiber application: middlewares, error handler and the
// full route table. templatesDir points at the html templates (the serve
// command passes ./web/templates; tests pass a relative path of their own).
func NewApp(db *sqlx.DB, cfg config.Config, templatesDir string) *fiber.App {
	engine := html.New(templatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
			}
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())

	deps := NewDeps(db, cfg)

	// Rendered dashboard
	app.Get("/", deps.DashboardHandler.Page)

	// Engine API
	api := app.Group("/api/v1")
	api.Get("/sections", deps.SectionHandler.List)
	api.Get("/books", deps.BookHandler.List)
	api.Post("/books", deps.BookHandler.Create)
	api.Post("/books/:id/stock", deps.BookHandler.Restock)
	api.Get("/students", deps.StudentHandler.List)
	api.Post("/students", deps.StudentHandler.Register)
	api.Get("/borrows", deps.BorrowHandler.List)
	api.Post("/borrows", deps.BorrowHandler.Borrow)
	api.Post("/borrows/:id/return", deps.BorrowHandler.Return)
	api.Get("/defaulters", deps.BorrowHandler.Defaulters)
	api.Get("/dashboard", deps.DashboardHandler.Summary)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	return app
}
