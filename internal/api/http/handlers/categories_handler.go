package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/service"
)

// CategoriesHandler manages catalog categories.
type CategoriesHandler struct {
	categories *service.CategoryService
	pages      config.PaginationConfig
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService, pages config.PaginationConfig) *CategoriesHandler {
	return &CategoriesHandler{categories: categories, pages: pages}
}

func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, dto.NewCategoryResponse(category), "Category created")
}

func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, total, err := h.categories.List(c.UserContext(), pageFrom(c, h.pages.DefaultLimit, h.pages))
	if err != nil {
		return err
	}
	return okList(c, "categories", total, dto.NewCategoryResponses(categories), "Categories list")
}

func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	category, err := h.categories.Get(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewCategoryResponse(category), "Category found")
}

func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Rename(c.UserContext(), paramID(c), req.Name)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewCategoryResponse(category), "Category updated")
}

func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	category, err := h.categories.Deactivate(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewCategoryResponse(category), "Category blocked")
}
