// Package handlers is the JSON boundary: it parses requests, resolves the
// caller's identity set by the auth middleware, invokes services and maps
// the error taxonomy onto status codes. All error bodies are
// {"errors": [...]}.
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/auth"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/services"
	"github.com/conduit-app/article-service/internal/store"
)

// LocalUserID is the fiber.Ctx locals key the auth middleware fills in.
const LocalUserID = "userID"

type Handler struct {
	Users    *services.UserService
	Articles *services.ArticleService
	Comments *services.CommentService
	Tags     *services.TagService
	Rel      *services.RelationshipService
	Tokens   *auth.Manager
	Log      *zap.SugaredLogger
}

func New(
	users *services.UserService,
	articles *services.ArticleService,
	comments *services.CommentService,
	tags *services.TagService,
	rel *services.RelationshipService,
	tokens *auth.Manager,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		Users:    users,
		Articles: articles,
		Comments: comments,
		Tags:     tags,
		Rel:      rel,
		Tokens:   tokens,
		Log:      log,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// currentUser loads the authenticated caller. Only called on routes behind
// the required-auth middleware. A token whose user document no longer
// exists is a dead credential, not a missing resource.
func (h *Handler) currentUser(c *fiber.Ctx) (*models.User, error) {
	id, _ := c.Locals(LocalUserID).(string)
	if id == "" {
		return nil, apperr.ErrInvalidCredentials
	}
	u, err := h.Users.GetByID(c.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, err
}

// viewer loads the caller when a token was presented, nil otherwise. Read
// endpoints use it for the following/favorited flags.
func (h *Handler) viewer(c *fiber.Ctx) *models.User {
	id, _ := c.Locals(LocalUserID).(string)
	if id == "" {
		return nil
	}
	u, err := h.Users.GetByID(c.Context(), id)
	if err != nil {
		return nil
	}
	return u
}

func errorBody(messages ...string) fiber.Map {
	return fiber.Map{"errors": messages}
}

// fail maps the application error taxonomy to HTTP statuses.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if ve, ok := apperr.AsValidation(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": ve.Messages})
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(errorBody("invalid email or password"))
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(errorBody("you are not authorized to perform this action"))
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, store.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(errorBody("resource already exists"))
	case errors.Is(err, store.ErrTransient):
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorBody("temporarily unavailable, try again"))
	default:
		h.Log.Errorw("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("internal error"))
	}
}

// Wire shapes.

type userView struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

type articleView struct {
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Body           string         `json:"body"`
	TagList        []string       `json:"tagList"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Favorited      bool           `json:"favorited"`
	FavoritesCount int64          `json:"favoritesCount"`
	Author         models.Profile `json:"author"`
}

type commentView struct {
	ID        string         `json:"id"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Author    models.Profile `json:"author"`
}

// newUserView is the self-representation: the only projection that carries
// email and token.
func (h *Handler) newUserView(u *models.User) (userView, error) {
	token, err := h.Tokens.Generate(u.ID)
	if err != nil {
		return userView{}, err
	}
	return userView{
		Username: u.Username,
		Email:    u.Email,
		Token:    token,
		Bio:      u.Bio,
		Image:    u.Image,
	}, nil
}

func (h *Handler) newArticleView(c *fiber.Ctx, a *models.Article, viewer *models.User) (articleView, error) {
	author, err := h.Articles.Author(c.Context(), a)
	if err != nil {
		return articleView{}, err
	}
	v := articleView{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        a.TagList,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		FavoritesCount: a.FavoritesCount,
		Author:         models.NewProfile(author, viewer),
	}
	if viewer != nil {
		v.Favorited = viewer.HasFavorited(a.ID)
	}
	if v.TagList == nil {
		v.TagList = []string{}
	}
	return v, nil
}

// newArticleViews builds list responses, skipping articles whose author
// document has gone missing.
func (h *Handler) newArticleViews(c *fiber.Ctx, as []*models.Article, viewer *models.User) ([]articleView, error) {
	out := make([]articleView, 0, len(as))
	for _, a := range as {
		v, err := h.newArticleView(c, a, viewer)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (h *Handler) newCommentView(c *fiber.Ctx, cm *models.Comment, viewer *models.User) (commentView, error) {
	author, err := h.Comments.Author(c.Context(), cm)
	if err != nil {
		return commentView{}, err
	}
	return commentView{
		ID:        cm.ID,
		Body:      cm.Body,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
		Author:    models.NewProfile(author, viewer),
	}, nil
}
