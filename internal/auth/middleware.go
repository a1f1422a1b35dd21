package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// TokenHeader carries the credential token on authenticated requests.
const TokenHeader = "x-token"

// Authenticator is the authentication gate: it verifies the request token,
// resolves the caller's identity and attaches it for later stages.
type Authenticator struct {
	tokens   *TokenManager
	resolver *IdentityResolver
}

// NewAuthenticator constructs the gate.
func NewAuthenticator(tokens *TokenManager, resolver *IdentityResolver) *Authenticator {
	return &Authenticator{tokens: tokens, resolver: resolver}
}

// Authenticate is the gate as a pipeline stage.
func (a *Authenticator) Authenticate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Get(TokenHeader))
	if token == "" {
		return apperrors.NewMissingCredential("No token provided")
	}

	subjectID, err := a.tokens.Verify(token)
	if err != nil {
		return apperrors.NewInvalidCredential("Invalid token", err)
	}

	identity, err := a.resolver.Resolve(c.UserContext(), subjectID)
	switch {
	case errors.Is(err, ErrIdentityNotFound):
		return apperrors.NewIdentityNotFound("User not found in database")
	case errors.Is(err, ErrIdentityInactive):
		return apperrors.NewIdentityInactive("User account is inactive")
	case err != nil:
		return apperrors.NewInternalError(err)
	}

	attachIdentity(c, identity)
	return nil
}

// Handle enforces authentication as fiber middleware for route groups.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	if err := a.Authenticate(c); err != nil {
		return err
	}
	return c.Next()
}
