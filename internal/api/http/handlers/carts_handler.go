package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/service"
)

// CartsHandler manages carts.
type CartsHandler struct {
	carts *service.CartService
	pages config.PaginationConfig
}

// NewCartsHandler constructs handler.
func NewCartsHandler(carts *service.CartService, pages config.PaginationConfig) *CartsHandler {
	return &CartsHandler{carts: carts, pages: pages}
}

func (h *CartsHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ProductsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cart, err := h.carts.Create(c.UserContext(), identity.ID, req.ProductIDs)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, dto.NewCartResponse(cart), "Cart created")
}

func (h *CartsHandler) List(c *fiber.Ctx) error {
	carts, total, err := h.carts.List(c.UserContext(), pageFrom(c, h.pages.DefaultLimit, h.pages))
	if err != nil {
		return err
	}
	return okList(c, "carts", total, dto.NewCartResponses(carts), "Carts list")
}

func (h *CartsHandler) Get(c *fiber.Ctx) error {
	cart, err := h.carts.Get(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewCartResponse(cart), "Cart found")
}

func (h *CartsHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cart, err := h.carts.ReplaceProducts(c.UserContext(), paramID(c), req.ProductIDs)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewCartResponse(cart), "Cart updated")
}

func (h *CartsHandler) Delete(c *fiber.Ctx) error {
	if err := h.carts.Delete(c.UserContext(), paramID(c)); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, fiber.Map{"id": paramID(c)}, "Cart deleted")
}
