package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/service"
)

// SearchHandler serves GET /api/search/:collection/:term.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	raw := utils.CopyString(c.Params("term"))
	term, err := url.PathUnescape(raw)
	if err != nil {
		term = raw
	}
	results, err := h.search.Search(c.UserContext(), utils.CopyString(c.Params("collection")), term)
	if err != nil {
		return err
	}

	var payload any
	switch r := results.(type) {
	case []domain.User:
		payload = dto.NewUserResponses(r)
	case []domain.Category:
		payload = dto.NewCategoryResponses(r)
	case []domain.Product:
		payload = dto.NewProductResponses(r)
	default:
		payload = r
	}
	return c.JSON(fiber.Map{"ok": true, "results": payload})
}
