package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/conduit-app/article-service/internal/models"
)

// ShowProfile handles GET /api/profiles/:username. Auth is optional: with
// a viewer the following flag is real, without one it is false.
func (h *Handler) ShowProfile(c *fiber.Ctx) error {
	target, err := h.Users.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"profile": models.NewProfile(target, h.viewer(c))})
}

// Follow handles POST /api/profiles/:username/follow.
func (h *Handler) Follow(c *fiber.Ctx) error {
	follower, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	target, err := h.Users.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Rel.Follow(c.Context(), follower, target); err != nil {
		return h.fail(c, err)
	}
	p := models.NewProfile(target, nil)
	p.Following = true
	return c.JSON(fiber.Map{"profile": p})
}

// Unfollow handles DELETE /api/profiles/:username/follow.
func (h *Handler) Unfollow(c *fiber.Ctx) error {
	follower, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	target, err := h.Users.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Rel.Unfollow(c.Context(), follower, target); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"profile": models.NewProfile(target, nil)})
}
