package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

// CreateComment handles POST /api/articles/:slug/comments.
func (h *Handler) CreateComment(c *fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}
	a, err := h.Articles.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	cm, err := h.Comments.Add(c.Context(), u, a, req.Comment.Body)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newCommentView(c, cm, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": view})
}

// ListComments handles GET /api/articles/:slug/comments.
func (h *Handler) ListComments(c *fiber.Ctx) error {
	a, err := h.Articles.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	comments, err := h.Comments.List(c.Context(), a)
	if err != nil {
		return h.fail(c, err)
	}
	viewer := h.viewer(c)
	views := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		view, err := h.newCommentView(c, cm, viewer)
		if err != nil {
			return h.fail(c, err)
		}
		views = append(views, view)
	}
	return c.JSON(fiber.Map{"comments": views})
}

// DeleteComment handles DELETE /api/articles/:slug/comments/:id.
func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	a, err := h.Articles.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Comments.Delete(c.Context(), u, a, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}
