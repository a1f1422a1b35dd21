package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/domain"
)

type identityKey struct{}

const identityLocalsKey = "auth_identity"

// WithIdentity returns a copy of ctx carrying the identity.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext retrieves the identity attached by the authentication gate.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return identity, ok && identity != nil
}

// IdentityFromRequest retrieves the authenticated identity for the current request.
func IdentityFromRequest(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityLocalsKey).(*domain.Identity)
	return identity, ok && identity != nil
}

func attachIdentity(c *fiber.Ctx, identity *domain.Identity) {
	c.Locals(identityLocalsKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
}
