package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shelfmark/internal/services"
)

type SectionHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/sections
func (h *SectionHandler) List(c *fiber.Ctx) error {
	sections, err := h.Catalog.ListSections()
	if err != nil {
		return fail(c, "sections.list.fail", err)
	}
	return c.JSON(sections)
}
