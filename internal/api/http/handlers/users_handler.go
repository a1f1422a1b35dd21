package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/service"
)

// UsersHandler manages accounts.
type UsersHandler struct {
	users *service.UserService
	pages config.PaginationConfig
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, pages config.PaginationConfig) *UsersHandler {
	return &UsersHandler{users: users, pages: pages}
}

// Register handles POST /api/users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Img:      req.Img,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, dto.NewUserResponse(user), "User created")
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, total, err := h.users.List(c.UserContext(), pageFrom(c, h.pages.DefaultUserLimit, h.pages))
	if err != nil {
		return err
	}
	return okList(c, "users", total, dto.NewUserResponses(users), "Users list")
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewUserResponse(user), "User found")
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UserUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), paramID(c), service.UserUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Img:      req.Img,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewUserResponse(user), "User updated")
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	user, err := h.users.Deactivate(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewUserResponse(user), "User blocked")
}
