package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/conduit-app/article-service/internal/services"
)

type registerRequest struct {
	User services.RegisterInput `json:"user"`
}

type loginRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type updateUserRequest struct {
	User services.UpdateUserInput `json:"user"`
}

// Register handles POST /api/users.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}
	u, err := h.Users.Register(c.Context(), req.User)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newUserView(u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": view})
}

// Login handles POST /api/users/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}
	u, err := h.Users.Login(c.Context(), req.User.Email, req.User.Password)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newUserView(u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"user": view})
}

// Current handles GET /api/user.
func (h *Handler) Current(c *fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newUserView(u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"user": view})
}

// UpdateCurrent handles PUT /api/user.
func (h *Handler) UpdateCurrent(c *fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}
	updated, err := h.Users.Update(c.Context(), u.ID, req.User)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.newUserView(updated)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"user": view})
}
