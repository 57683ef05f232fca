package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/conduit-app/article-service/internal/services"
)

type createArticleRequest struct {
	Article services.CreateArticleInput `json:"article"`
}

type updateArticleRequest struct {
	Article services.UpdateArticleInput `json:"article"`
}

// ListArticles handles GET /api/articles with optional tag, author,
// favorited, limit and offset query parameters.
func (h *Handler) ListArticles(c *fiber.Ctx) error {
	filter := services.ListFilter{
		Tag:         c.Query("tag"),
		Author:      c.Query("author"),
		FavoritedBy: c.Query("favorited"),
		Limit:       c.QueryInt("limit"),
		Offset:      c.QueryInt("offset"),
	}
	articles, err := h.Articles.List(c.Context(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	views, err := h.newArticleViews(c, articles, h.viewer(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"articles": views, "articlesCount": len(views)})
}

// Feed handles GET /api/articles/feed.
func (h *Handler) Feed(c *fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	articles, err := h.Articles.Feed(c.Context(), u)
	if err != nil {
		return h.fail(c, err)
	}
	views, err := h.newArticleViews(c, articles, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"articles": views, "articlesCount": len(views)})
}

// ShowArticle handles GET /api/articles/:slug.
func (h *Handler) ShowArticle(c *fiber.Ctx) error {
	a, err := h.Articles.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newArticleView(c, a, h.viewer(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"article": view})
}

// CreateArticle handles POST /api/articles.
func (h *Handler) CreateArticle(c *fiber.Ctx) error {
	author, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req createArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}
	a, err := h.Articles.Create(c.Context(), author, req.Article)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newArticleView(c, a, author)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"article": view})
}

// UpdateArticle handles PUT /api/articles/:slug.
func (h *Handler) UpdateArticle(c *fiber.Ctx) error {
	caller, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req updateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}
	a, err := h.Articles.Update(c.Context(), caller, c.Params("slug"), req.Article)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newArticleView(c, a, caller)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"article": view})
}

// DeleteArticle handles DELETE /api/articles/:slug.
func (h *Handler) DeleteArticle(c *fiber.Ctx) error {
	caller, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Articles.Delete(c.Context(), caller, c.Params("slug")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "article deleted"})
}

// Favorite handles POST /api/articles/:slug/favorite.
func (h *Handler) Favorite(c *fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	a, err := h.Articles.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Rel.Favorite(c.Context(), u, a); err != nil {
		return h.fail(c, err)
	}
	// re-read for the post-mutation counter
	a, err = h.Articles.GetBySlug(c.Context(), a.Slug)
	if err != nil {
		return h.fail(c, err)
	}
	u, err = h.Users.GetByID(c.Context(), u.ID)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newArticleView(c, a, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"article": view})
}

// Unfavorite handles DELETE /api/articles/:slug/favorite.
func (h *Handler) Unfavorite(c *fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	a, err := h.Articles.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Rel.Unfavorite(c.Context(), u, a); err != nil {
		return h.fail(c, err)
	}
	a, err = h.Articles.GetBySlug(c.Context(), a.Slug)
	if err != nil {
		return h.fail(c, err)
	}
	u, err = h.Users.GetByID(c.Context(), u.ID)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newArticleView(c, a, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"article": view})
}
