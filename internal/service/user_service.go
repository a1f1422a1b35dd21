package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// UserService manages accounts.
type UserService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, hasher: hasher, dispatcher: dispatcher}
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Img      *string
}

// UserUpdateInput holds optional account changes.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Img      *string
}

// Register creates an active account with the user role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("User with email "+email+" exists already.", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Img:          in.Img,
		Role:         domain.RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("User with email "+email+" exists already.", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	publishEvent(ctx, s.dispatcher, events.New(events.EventUserRegistered, user.ID, user.ID, events.UserRegisteredPayload{Email: user.Email}))
	return user, nil
}

// List returns active accounts.
func (s *UserService) List(ctx context.Context, page repository.Page) ([]domain.User, int, error) {
	users, total, err := s.users.ListActive(ctx, page)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	return users, total, nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	return user, nil
}

// Update applies changes to an active account.
func (s *UserService) Update(ctx context.Context, id string, in UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	if !user.Active {
		return nil, apperrors.NewDomainError(apperrors.CodeNotFound, "User blocked can't update his info", http.StatusNotFound, nil)
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Img != nil {
		user.Img = in.Img
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("User with email "+user.Email+" exists already.", nil)
		}
		return nil, notFoundOr(err, "User")
	}
	return user, nil
}

// Deactivate soft-deletes an account.
func (s *UserService) Deactivate(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	if !user.Active {
		return nil, apperrors.NewBadRequest("User is already blocked.")
	}
	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, notFoundOr(err, "User")
	}
	return user, nil
}

// notFoundOr maps a missing row to a 404 for resource and anything else to a 500.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}
