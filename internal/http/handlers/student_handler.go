package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shelfmark/internal/log"
	"shelfmark/internal/services"
)

type StudentHandler struct {
	Students *services.StudentService
}

// GET /api/v1/students
func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.Students.List()
	if err != nil {
		return fail(c, "students.list.fail", err)
	}
	return c.JSON(students)
}

// POST /api/v1/students
func (h *StudentHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterStudentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	student, err := h.Students.Register(in)
	if err != nil {
		return fail(c, "students.register.fail", err)
	}
	applog.Audit(c, "students.register", map[string]any{"student_id": student.ID, "matric": student.MatricNumber})
	return c.Status(fiber.StatusCreated).JSON(student)
}
