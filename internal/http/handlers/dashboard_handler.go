package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shelfmark/internal/services"
)

type DashboardHandler struct {
	Reporting *services.ReportingService
}

// GET /api/v1/dashboard
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.Reporting.DashboardSummary()
	if err != nil {
		return fail(c, "dashboard.summary.fail", err)
	}
	return c.JSON(sum)
}

// GET / — server-rendered dashboard page.
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	sum, err := h.Reporting.DashboardSummary()
	if err != nil {
		return fail(c, "dashboard.page.fail", err)
	}
	return c.Render("dashboard", fiber.Map{"Summary": sum})
}
