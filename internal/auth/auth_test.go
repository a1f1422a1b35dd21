package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/domain"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

type fakeUsers struct {
	users map[string]*domain.User
	err   error
	calls atomic.Int32
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*domain.User{
		"u1":    {ID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser, Active: true},
		"u2":    {ID: "u2", Name: "Ben", Email: "ben@example.com", Role: domain.RoleUser, Active: true},
		"admin": {ID: "admin", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin, Active: true},
		"gone":  {ID: "gone", Name: "Old", Email: "old@example.com", Role: domain.RoleUser, Active: false},
	}}
}

// testApp mirrors the production error boundary closely enough to assert on
// statuses and messages.
func testApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"msg": de.Message, "code": de.Code})
		},
	})
}

type errorBody struct {
	Msg  string `json:"msg"`
	Code string `json:"code"`
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string) (int, errorBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("X-Token", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

type authFixture struct {
	tokens *TokenManager
	users  *fakeUsers
	gate   *Authenticator
	clock  *fakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := &fakeClock{now: time.Now()}
	tokens := newTestTokens(t, clock)
	users := newFakeUsers()
	return &authFixture{
		tokens: tokens,
		users:  users,
		gate:   NewAuthenticator(tokens, NewIdentityResolver(users)),
		clock:  clock,
	}
}

func (f *authFixture) token(t *testing.T, id string) string {
	t.Helper()
	token, _, err := f.tokens.Issue(id)
	require.NoError(t, err)
	return token
}

func identityHandler(c *fiber.Ctx) error {
	identity, ok := IdentityFromRequest(c)
	if !ok {
		return errors.New("identity missing")
	}
	fromCtx, ok := IdentityFromContext(c.UserContext())
	if !ok || fromCtx.ID != identity.ID {
		return errors.New("identity missing from user context")
	}
	return c.JSON(identity)
}

func TestIdentityResolver(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	resolver := NewIdentityResolver(users)
	ctx := context.Background()

	identity, err := resolver.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser, Active: true}, identity)

	_, err = resolver.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	_, err = resolver.Resolve(ctx, "gone")
	assert.ErrorIs(t, err, ErrIdentityInactive)

	assert.EqualValues(t, 3, users.calls.Load())

	storeErr := errors.New("connection reset")
	failing := NewIdentityResolver(&fakeUsers{err: storeErr})
	_, err = failing.Resolve(ctx, "u1")
	assert.ErrorIs(t, err, storeErr)
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	app := testApp()
	app.Get("/me", Compose(f.gate.Authenticate).Then(identityHandler))

	expired, _, err := f.tokens.Issue("u1")
	require.NoError(t, err)
	f.clock.Advance(3 * time.Hour)

	tests := []struct {
		name   string
		token  string
		status int
		msg    string
		code   string
		reads  int32
	}{
		{name: "missing header", token: "", status: http.StatusUnauthorized, msg: "No token provided", code: apperrors.CodeMissingCredential, reads: 0},
		{name: "garbage token", token: "abc", status: http.StatusUnauthorized, msg: "Invalid token", code: apperrors.CodeInvalidCredential, reads: 0},
		{name: "expired token", token: expired, status: http.StatusUnauthorized, msg: "Invalid token", code: apperrors.CodeInvalidCredential, reads: 0},
		{name: "unknown user", token: f.token(t, "missing"), status: http.StatusUnauthorized, msg: "User not found in database", code: apperrors.CodeIdentityNotFound, reads: 1},
		{name: "inactive user", token: f.token(t, "gone"), status: http.StatusUnauthorized, msg: "User account is inactive", code: apperrors.CodeIdentityInactive, reads: 1},
		{name: "valid", token: f.token(t, "u1"), status: http.StatusOK, reads: 1},
	}

	for _, tt := range tests {
		before := f.users.calls.Load()
		status, body := doRequest(t, app, http.MethodGet, "/me", tt.token)
		assert.Equal(t, tt.status, status, tt.name)
		assert.Equal(t, tt.msg, body.Msg, tt.name)
		assert.Equal(t, tt.code, body.Code, tt.name)
		assert.Equal(t, tt.reads, f.users.calls.Load()-before, tt.name)
	}
}

func TestAuthenticator_HeaderIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	app := testApp()
	app.Get("/me", f.gate.Handle, identityHandler)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header["X-TOKEN"] = []string{f.token(t, "u1")}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthenticator_StoreFailure(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.users.err = errors.New("store unavailable")
	app := testApp()
	app.Get("/me", Compose(f.gate.Authenticate).Then(identityHandler))

	status, body := doRequest(t, app, http.MethodGet, "/me", f.token(t, "u1"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Msg)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	app := testApp()
	app.Get("/admin", Compose(f.gate.Authenticate, RequireRole(NewRoleSet(domain.RoleAdmin))).Then(identityHandler))
	app.Get("/any", Compose(f.gate.Authenticate, RequireRole(NewRoleSet(domain.RoleAdmin, domain.RoleUser, domain.RoleAdmin))).Then(identityHandler))
	app.Get("/misuse", Compose(RequireRole(NewRoleSet(domain.RoleAdmin))).Then(identityHandler))

	status, body := doRequest(t, app, http.MethodGet, "/admin", f.token(t, "u1"))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "The service requires one of these roles: admin", body.Msg)
	assert.Equal(t, apperrors.CodeForbidden, body.Code)

	status, _ = doRequest(t, app, http.MethodGet, "/admin", f.token(t, "admin"))
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, app, http.MethodGet, "/any", f.token(t, "u1"))
	assert.Equal(t, http.StatusOK, status)

	status, body = doRequest(t, app, http.MethodGet, "/misuse", f.token(t, "admin"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodePipelineMisuse, body.Code)
}

func TestRoleSet(t *testing.T) {
	t.Parallel()

	set := NewRoleSet(domain.RoleAdmin, domain.RoleUser, domain.RoleAdmin)
	assert.True(t, set.Contains(domain.RoleUser))
	assert.False(t, set.Contains(domain.Role("guest")))
	assert.Equal(t, "admin,user", set.String())

	var empty RoleSet
	assert.False(t, empty.Contains(domain.RoleAdmin))
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	app := testApp()
	app.Get("/admin", Compose(f.gate.Authenticate, RequireAdmin()).Then(identityHandler))
	app.Get("/misuse", Compose(RequireAdmin()).Then(identityHandler))

	status, body := doRequest(t, app, http.MethodGet, "/admin", f.token(t, "u2"))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Ben is not an admin - Unauthorized", body.Msg)

	status, _ = doRequest(t, app, http.MethodGet, "/admin", f.token(t, "admin"))
	assert.Equal(t, http.StatusOK, status)

	status, body = doRequest(t, app, http.MethodGet, "/misuse", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodePipelineMisuse, body.Code)
}

func TestRequireOwnership(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	owners := map[string]string{"p1": "u1"}
	var lookups atomic.Int32
	lookup := OwnerLookupFunc(func(_ context.Context, id string) (string, error) {
		lookups.Add(1)
		if id == "broken" {
			return "", errors.New("store down")
		}
		owner, ok := owners[id]
		if !ok {
			return "", pgx.ErrNoRows
		}
		return owner, nil
	})

	var terminalRuns atomic.Int32
	terminal := func(c *fiber.Ctx) error {
		terminalRuns.Add(1)
		return c.SendStatus(http.StatusNoContent)
	}

	app := testApp()
	app.Delete("/products/:id", Compose(f.gate.Authenticate, RequireOwnership("product", lookup, "id")).Then(terminal))
	app.Delete("/misuse/:id", Compose(RequireOwnership("product", lookup, "id")).Then(terminal))

	status, body := doRequest(t, app, http.MethodDelete, "/products/p1", f.token(t, "u2"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to modify this product", body.Msg)
	assert.Zero(t, terminalRuns.Load())

	status, body = doRequest(t, app, http.MethodDelete, "/products/nope", f.token(t, "u1"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "product not found", body.Msg)

	status, _ = doRequest(t, app, http.MethodDelete, "/products/broken", f.token(t, "u1"))
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/products/p1", f.token(t, "u1"))
	assert.Equal(t, http.StatusNoContent, status)
	assert.EqualValues(t, 1, terminalRuns.Load())

	before := lookups.Load()
	status, body = doRequest(t, app, http.MethodDelete, "/misuse/p1", f.token(t, "u1"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodePipelineMisuse, body.Code)
	assert.Equal(t, before, lookups.Load())
}
