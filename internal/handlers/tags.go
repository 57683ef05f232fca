package handlers

import "github.com/gofiber/fiber/v2"

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(c *fiber.Ctx) error {
	tags, err := h.Tags.List(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(fiber.Map{"tags": tags})
}
