package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shop-service/internal/domain"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

const misuseMessage = "Role verification attempted without validating the token first"

// RoleSet is a fixed set of roles, built once when routes are wired.
type RoleSet struct {
	allowed map[domain.Role]struct{}
	ordered []domain.Role
}

// NewRoleSet builds a set from roles, ignoring duplicates.
func NewRoleSet(roles ...domain.Role) RoleSet {
	set := RoleSet{allowed: make(map[domain.Role]struct{}, len(roles))}
	for _, role := range roles {
		if _, dup := set.allowed[role]; dup {
			continue
		}
		set.allowed[role] = struct{}{}
		set.ordered = append(set.ordered, role)
	}
	return set
}

// Contains reports whether role is a member of the set.
func (s RoleSet) Contains(role domain.Role) bool {
	_, ok := s.allowed[role]
	return ok
}

func (s RoleSet) String() string {
	names := make([]string, len(s.ordered))
	for i, role := range s.ordered {
		names[i] = string(role)
	}
	return strings.Join(names, ",")
}

// RequireRole denies callers whose role is outside allowed.
func RequireRole(allowed RoleSet) Stage {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromRequest(c)
		if !ok {
			return apperrors.NewPipelineMisuse(misuseMessage)
		}
		if !allowed.Contains(identity.Role) {
			return apperrors.NewRoleForbidden(fmt.Sprintf("The service requires one of these roles: %s", allowed))
		}
		return nil
	}
}

// RequireAdmin denies every caller that is not an admin.
func RequireAdmin() Stage {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromRequest(c)
		if !ok {
			return apperrors.NewPipelineMisuse(misuseMessage)
		}
		if !identity.IsAdmin() {
			return apperrors.NewRoleForbidden(fmt.Sprintf("%s is not an admin - Unauthorized", identity.Name))
		}
		return nil
	}
}

// OwnerLookup returns the owning user id of a resource. Implementations return
// pgx.ErrNoRows when the resource does not exist.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, id string) (string, error)
}

// OwnerLookupFunc adapts a function to OwnerLookup.
type OwnerLookupFunc func(ctx context.Context, id string) (string, error)

// OwnerOf calls f.
func (f OwnerLookupFunc) OwnerOf(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// RequireOwnership allows the request only when the identity owns the resource
// named by the route parameter param. The stage loads the resource itself.
func RequireOwnership(resource string, lookup OwnerLookup, param string) Stage {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromRequest(c)
		if !ok {
			return apperrors.NewPipelineMisuse(misuseMessage)
		}

		ownerID, err := lookup.OwnerOf(c.UserContext(), c.Params(param))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound(resource, map[string]any{"id": c.Params(param)})
			}
			return apperrors.NewInternalError(err)
		}

		if ownerID != identity.ID {
			return apperrors.NewForbidden(fmt.Sprintf("You do not have permission to modify this %s", resource))
		}
		return nil
	}
}
