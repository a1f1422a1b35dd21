package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/service"
)

// OrdersHandler manages orders.
type OrdersHandler struct {
	orders *service.OrderService
	pages  config.PaginationConfig
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService, pages config.PaginationConfig) *OrdersHandler {
	return &OrdersHandler{orders: orders, pages: pages}
}

func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ProductsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.orders.Place(c.UserContext(), identity.ID, req.ProductIDs)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, dto.NewOrderResponse(order), "Order created")
}

func (h *OrdersHandler) List(c *fiber.Ctx) error {
	orders, total, err := h.orders.List(c.UserContext(), pageFrom(c, h.pages.DefaultLimit, h.pages))
	if err != nil {
		return err
	}
	return okList(c, "orders", total, dto.NewOrderResponses(orders), "Orders list")
}

func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewOrderResponse(order), "Order found")
}

// UpdateStatus handles PUT /api/orders/:id.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.OrderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.orders.SetStatus(c.UserContext(), paramID(c), req.Status, identity.ID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewOrderResponse(order), "Order updated")
}

func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	if err := h.orders.Delete(c.UserContext(), paramID(c)); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, fiber.Map{"id": paramID(c)}, "Order deleted")
}
