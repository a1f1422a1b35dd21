package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shop-service/internal/domain"
)

var (
	// ErrIdentityNotFound means no account exists for the token subject.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrIdentityInactive means the account exists but has been deactivated.
	ErrIdentityInactive = errors.New("identity inactive")
)

// UserLookup is the slice of the account store the resolver reads from.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// IdentityResolver turns a verified token subject into an Identity.
type IdentityResolver struct {
	users UserLookup
}

// NewIdentityResolver constructs a resolver over the account store.
func NewIdentityResolver(users UserLookup) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve performs exactly one account lookup for subjectID.
func (r *IdentityResolver) Resolve(ctx context.Context, subjectID string) (*domain.Identity, error) {
	user, err := r.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("lookup account %s: %w", subjectID, err)
	}
	if user == nil {
		return nil, ErrIdentityNotFound
	}
	if !user.Active {
		return nil, ErrIdentityInactive
	}
	return domain.IdentityFromUser(user), nil
}
