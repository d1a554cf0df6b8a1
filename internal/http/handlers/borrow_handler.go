package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shelfmark/internal/log"
	"shelfmark/internal/services"
	"shelfmark/internal/validate"
)

type BorrowHandler struct {
	Lending   *services.LendingService
	Reporting *services.ReportingService
}

// GET /api/v1/borrows?only_active=&only_overdue=
func (h *BorrowHandler) List(c *fiber.Ctx) error {
	borrows, err := h.Reporting.ListBorrows(c.QueryBool("only_active", false), c.QueryBool("only_overdue", false))
	if err != nil {
		return fail(c, "borrows.list.fail", err)
	}
	return c.JSON(borrows)
}

// GET /api/v1/defaulters
func (h *BorrowHandler) Defaulters(c *fiber.Ctx) error {
	borrows, err := h.Reporting.ListDefaulters()
	if err != nil {
		return fail(c, "borrows.defaulters.fail", err)
	}
	return c.JSON(borrows)
}

// POST /api/v1/borrows
func (h *BorrowHandler) Borrow(c *fiber.Ctx) error {
	var in struct {
		StudentID string `json:"student_id"`
		BookID    string `json:"book_id"`
		LendDays  *int   `json:"lend_days"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	studentID, ok := validate.ID(in.StudentID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid student_id"})
	}
	bookID, ok := validate.ID(in.BookID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid book_id"})
	}
	lendDays := 0
	if in.LendDays != nil {
		lendDays = *in.LendDays
	}

	borrow, err := h.Lending.Borrow(studentID, bookID, lendDays)
	if err != nil {
		return fail(c, "borrows.create.fail", err)
	}
	applog.Audit(c, "borrows.create", map[string]any{"borrow_id": borrow.ID, "student_id": studentID, "book_id": bookID})
	return c.Status(fiber.StatusCreated).JSON(borrow)
}

// POST /api/v1/borrows/:id/return
func (h *BorrowHandler) Return(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid borrow id"})
	}

	borrow, err := h.Lending.Return(id)
	if err != nil {
		return fail(c, "borrows.return.fail", err)
	}
	applog.Audit(c, "borrows.return", map[string]any{"borrow_id": id, "fine": borrow.FineAmount})
	return c.JSON(borrow)
}
