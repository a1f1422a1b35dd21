package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates the login flow.
type AuthService struct {
	users       repository.UserRepository
	attempts    repository.LoginAttemptRepository
	tokenMgr    *auth.TokenManager
	hasher      *auth.PasswordHasher
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
// AttemptRepo may be nil, which disables login throttling.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	AttemptRepo repository.LoginAttemptRepository
	Tokens      *auth.TokenManager
	Hasher      *auth.PasswordHasher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		attempts:    deps.AttemptRepo,
		tokenMgr:    deps.Tokens,
		hasher:      deps.Hasher,
		maxAttempts: cfg.MaxLoginAttempts,
		window:      cfg.LoginWindow(),
		logger:      logger,
	}
}

// Login authenticates an account by email and password and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := s.checkThrottle(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.recordFailure(ctx, email)
			return nil, apperrors.NewBadRequest("Invalid credentials. User not found.")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !user.Active {
		return nil, apperrors.NewBadRequest("The user account is inactive.")
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.recordFailure(ctx, email)
			return nil, apperrors.NewBadRequest("Invalid credentials. Incorrect password.")
		}
		return nil, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, email); err != nil {
			s.logger.Warn("reset login attempts", zap.Error(err))
		}
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// checkThrottle fails open: an unreachable counter store never blocks logins.
func (s *AuthService) checkThrottle(ctx context.Context, email string) error {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return nil
	}
	failures, err := s.attempts.Failures(ctx, email)
	if err != nil {
		s.logger.Warn("read login attempts", zap.Error(err))
		return nil
	}
	if failures >= s.maxAttempts {
		return apperrors.NewTooManyRequests("Too many failed login attempts. Try again later.")
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return
	}
	if _, err := s.attempts.RecordFailure(ctx, email, s.window); err != nil {
		s.logger.Warn("record login failure", zap.Error(err))
	}
}
