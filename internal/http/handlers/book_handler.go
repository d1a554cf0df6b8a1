package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shelfmark/internal/log"
	"shelfmark/internal/services"
	"shelfmark/internal/validate"
)

type BookHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/books?section_id=&include_out_of_stock=
func (h *BookHandler) List(c *fiber.Ctx) error {
	sectionID := strings.TrimSpace(c.Query("section_id"))
	if sectionID != "" {
		if _, ok := validate.ID(sectionID); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid section_id"})
		}
	}
	includeOOS := c.QueryBool("include_out_of_stock", true)

	books, err := h.Catalog.ListBooks(sectionID, includeOOS)
	if err != nil {
		return fail(c, "books.list.fail", err)
	}
	return c.JSON(books)
}

// POST /api/v1/books
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var in services.CreateBookInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	book, err := h.Catalog.CreateBook(in)
	if err != nil {
		return fail(c, "books.create.fail", err)
	}
	applog.Audit(c, "books.create", map[string]any{"book_id": book.ID, "title": book.Title})
	return c.Status(fiber.StatusCreated).JSON(book)
}

// POST /api/v1/books/:id/stock
func (h *BookHandler) Restock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid book id"})
	}
	var in struct {
		AddedCopies int `json:"added_copies"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	book, err := h.Catalog.Restock(id, in.AddedCopies)
	if err != nil {
		return fail(c, "books.restock.fail", err)
	}
	applog.Audit(c, "books.restock", map[string]any{"book_id": id, "added": in.AddedCopies})
	return c.JSON(book)
}
