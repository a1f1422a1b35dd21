package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/service"
)

// ProductsHandler manages catalog products.
type ProductsHandler struct {
	products *service.ProductService
	pages    config.PaginationConfig
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService, pages config.PaginationConfig) *ProductsHandler {
	return &ProductsHandler{products: products, pages: pages}
}

// Create handles POST /api/products. The caller becomes the owner.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ProductCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.UserContext(), identity.ID, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Img:         req.Img,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, dto.NewProductResponse(product), "Product created")
}

func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, total, err := h.products.List(c.UserContext(), pageFrom(c, h.pages.DefaultLimit, h.pages))
	if err != nil {
		return err
	}
	return okList(c, "products", total, dto.NewProductResponses(products), "Products list")
}

func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewProductResponse(product), "Product found")
}

func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.UserContext(), paramID(c), service.ProductUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Img:         req.Img,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewProductResponse(product), "Product updated")
}

func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	product, err := h.products.Delete(c.UserContext(), paramID(c), identity.ID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, dto.NewProductResponse(product), "Product deleted")
}
