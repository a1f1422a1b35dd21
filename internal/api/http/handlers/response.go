package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

func ok(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func okList(c *fiber.Ctx, key string, total int, items any, message string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total": total,
			key:     items,
		},
		"message": message,
	})
}

// bind parses and validates a JSON body.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(dst)
}

// pageFrom reads limit and since (an offset) from the query string.
// Missing or malformed values fall back to defaults.
func pageFrom(c *fiber.Ctx, defaultLimit int, cfg config.PaginationConfig) repository.Page {
	limit := queryInt(c, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	offset := queryInt(c, "since", 0)
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// paramID copies the :id route parameter out of fasthttp's reusable
// buffer, since ids flow into events delivered after the request ends.
func paramID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// currentIdentity returns the caller attached by the authentication gate.
func currentIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	identity, found := auth.IdentityFromRequest(c)
	if !found {
		return nil, apperrors.NewPipelineMisuse("handler requires an authenticated identity")
	}
	return identity, nil
}
