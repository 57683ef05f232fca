package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/conduit-app/article-service/internal/handlers"
	"github.com/conduit-app/article-service/internal/middleware"
)

// Register mounts every API route on the app. The required and optional
// handlers are the two auth middleware variants; limiter may be a
// pass-through when redis is not configured.
func Register(app *fiber.App, h *handlers.Handler, required, optional fiber.Handler, limiter *middleware.RateLimiter) {
	api := app.Group("/api", limiter.Middleware())

	api.Get("/health", h.Health)

	api.Post("/users", h.Register)
	api.Post("/users/login", h.Login)
	api.Get("/user", required, h.Current)
	api.Put("/user", required, h.UpdateCurrent)

	api.Get("/profiles/:username", optional, h.ShowProfile)
	api.Post("/profiles/:username/follow", required, h.Follow)
	api.Delete("/profiles/:username/follow", required, h.Unfollow)

	api.Get("/articles", optional, h.ListArticles)
	api.Get("/articles/feed", required, h.Feed)
	api.Get("/articles/:slug", optional, h.ShowArticle)
	api.Post("/articles", required, h.CreateArticle)
	api.Put("/articles/:slug", required, h.UpdateArticle)
	api.Delete("/articles/:slug", required, h.DeleteArticle)

	api.Post("/articles/:slug/favorite", required, h.Favorite)
	api.Delete("/articles/:slug/favorite", required, h.Unfavorite)

	api.Get("/articles/:slug/comments", optional, h.ListComments)
	api.Post("/articles/:slug/comments", required, h.CreateComment)
	api.Delete("/articles/:slug/comments/:id", required, h.DeleteComment)

	api.Get("/tags", h.ListTags)
}
