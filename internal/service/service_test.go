package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	"github.com/spec-kit/shop-service/internal/repository/memstore"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

type capturedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturedEvents) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) Subscribe(events.EventType, events.EventHandler) {}

func (c *capturedEvents) types() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func requireDomainError(t *testing.T, err error, code string, status int) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, code, de.Code)
	assert.Equal(t, status, de.HTTPStatus)
	return de
}

func newHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

func seedProduct(t *testing.T, store *memstore.Store, owner, category, name string, price float64) *domain.Product {
	t.Helper()
	p := &domain.Product{OwnerUserID: owner, CategoryID: category, Name: name, Price: price, Active: true}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

func newAuthService(t *testing.T, store *memstore.Store, attempts repository.LoginAttemptRepository) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{MaxLoginAttempts: 3, LoginWindowMinutes: 15}, AuthDependencies{
		UserRepo:    store.Users,
		AttemptRepo: attempts,
		Tokens:      tokens,
		Hasher:      newHasher(),
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	users := NewUserService(store.Users, newHasher(), nil)
	registered, err := users.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "pw123456"})
	require.NoError(t, err)

	svc := newAuthService(t, store, store.Attempts)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "pw")
		de := requireDomainError(t, err, apperrors.CodeBadRequest, http.StatusBadRequest)
		assert.Equal(t, "Invalid credentials. User not found.", de.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "ana@example.com", "nope")
		de := requireDomainError(t, err, apperrors.CodeBadRequest, http.StatusBadRequest)
		assert.Equal(t, "Invalid credentials. Incorrect password.", de.Message)
	})

	t.Run("success issues a verifiable token and clears failures", func(t *testing.T) {
		res, err := svc.Login(ctx, "ana@example.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, res.User.ID)
		assert.NotEmpty(t, res.Token)

		failures, err := store.Attempts.Failures(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Zero(t, failures)
	})
}

func TestAuthService_LoginInactive(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	users := NewUserService(store.Users, newHasher(), nil)
	u, err := users.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@example.com", Password: "pw123456"})
	require.NoError(t, err)
	_, err = users.Deactivate(ctx, u.ID)
	require.NoError(t, err)

	_, err = newAuthService(t, store, nil).Login(ctx, "bo@example.com", "pw123456")
	de := requireDomainError(t, err, apperrors.CodeBadRequest, http.StatusBadRequest)
	assert.Equal(t, "The user account is inactive.", de.Message)
}

func TestAuthService_Throttle(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := NewUserService(store.Users, newHasher(), nil).Register(ctx, RegisterInput{Name: "Cy", Email: "cy@example.com", Password: "pw123456"})
	require.NoError(t, err)
	svc := newAuthService(t, store, store.Attempts)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, "cy@example.com", "bad")
		requireDomainError(t, err, apperrors.CodeBadRequest, http.StatusBadRequest)
	}

	// Even the right password is refused once the limit is reached.
	_, err = svc.Login(ctx, "CY@example.com ", "pw123456")
	requireDomainError(t, err, apperrors.CodeTooManyRequests, http.StatusTooManyRequests)
}

func TestAuthService_ThrottleFailsOpen(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := NewUserService(store.Users, newHasher(), nil).Register(ctx, RegisterInput{Name: "Di", Email: "di@example.com", Password: "pw123456"})
	require.NoError(t, err)
	store.Attempts.Fail(memstore.ErrUnavailable)

	_, err = newAuthService(t, store, store.Attempts).Login(ctx, "di@example.com", "pw123456")
	require.NoError(t, err)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	sink := &capturedEvents{}
	svc := NewUserService(store.Users, newHasher(), sink)

	u, err := svc.Register(ctx, RegisterInput{Name: " Ana ", Email: "ana@example.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.Active)
	assert.NotEqual(t, "pw123456", u.PasswordHash)
	assert.Equal(t, []events.EventType{events.EventUserRegistered}, sink.types())

	_, err = svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "x"})
	requireDomainError(t, err, apperrors.CodeConflict, http.StatusConflict)
}

func TestUserService_UpdateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	hasher := newHasher()
	svc := NewUserService(store.Users, hasher, nil)
	u, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "old-password"})
	require.NoError(t, err)

	name, password := "Ana Maria", "new-password"
	updated, err := svc.Update(ctx, u.ID, UserUpdateInput{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.NoError(t, hasher.Compare(updated.PasswordHash, "new-password"))

	_, err = svc.Deactivate(ctx, u.ID)
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, u.ID)
	de := requireDomainError(t, err, apperrors.CodeBadRequest, http.StatusBadRequest)
	assert.Equal(t, "User is already blocked.", de.Message)

	_, err = svc.Update(ctx, u.ID, UserUpdateInput{Name: &name})
	de = requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	assert.Equal(t, "User blocked can't update his info", de.Message)

	_, err = svc.Get(ctx, "not-a-uuid")
	requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewCategoryService(store.Categories)

	c, err := svc.Create(ctx, " Books ")
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)

	renamed, err := svc.Rename(ctx, c.ID, "Comics")
	require.NoError(t, err)
	assert.Equal(t, "Comics", renamed.Name)

	_, err = svc.Deactivate(ctx, c.ID)
	require.NoError(t, err)

	list, total, err := svc.List(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	_, err = svc.Rename(ctx, c.ID, "Again")
	requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestProductService(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	sink := &capturedEvents{}
	category := &domain.Category{Name: "Books", Active: true}
	require.NoError(t, store.Categories.Create(ctx, category))

	svc := NewProductService(ProductDependencies{
		ProductRepo:  store.Products,
		CategoryRepo: store.Categories,
		Dispatcher:   sink,
	})

	_, err := svc.Create(ctx, "owner-1", ProductInput{Name: "Dune", Price: 10, CategoryID: "00000000-0000-0000-0000-000000000000"})
	de := requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	assert.Equal(t, "Category not found", de.Message)

	p, err := svc.Create(ctx, "owner-1", ProductInput{Name: "Dune", Price: 10, CategoryID: category.ID})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", p.OwnerUserID)
	assert.True(t, p.Active)

	price := 12.5
	updated, err := svc.Update(ctx, p.ID, ProductUpdateInput{Price: &price})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, updated.Price, 1e-9)

	deleted, err := svc.Delete(ctx, p.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)
	assert.Equal(t, []events.EventType{events.EventProductDeleted}, sink.types())

	_, err = svc.Get(ctx, p.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestCartService_Pricing(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	a := seedProduct(t, store, "o", "c", "A", 2.5)
	b := seedProduct(t, store, "o", "c", "B", 4)
	svc := NewCartService(store.Carts, store.Products)

	_, err := svc.Create(ctx, "u1", nil)
	de := requireDomainError(t, err, apperrors.CodeValidation, http.StatusBadRequest)
	assert.Equal(t, "Must provide an array of products.", de.Message)

	_, err = svc.Create(ctx, "u1", []string{"00000000-0000-0000-0000-000000000000"})
	requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	cart, err := svc.Create(ctx, "u1", []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.Len(t, cart.Products, 2)
	assert.InDelta(t, 6.5, cart.TotalPrice, 1e-9)

	cart, err = svc.ReplaceProducts(ctx, cart.ID, []string{b.ID})
	require.NoError(t, err)
	assert.InDelta(t, 4, cart.TotalPrice, 1e-9)

	require.NoError(t, svc.Delete(ctx, cart.ID))
	err = svc.Delete(ctx, cart.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestOrderService(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	sink := &capturedEvents{}
	a := seedProduct(t, store, "o", "c", "A", 3)
	svc := NewOrderService(store.Orders, store.Products, sink)

	order, err := svc.Place(ctx, "u1", []string{a.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInProcess, order.Status)
	assert.InDelta(t, 3, order.TotalPrice, 1e-9)

	_, err = svc.SetStatus(ctx, order.ID, "shipped", "admin")
	requireDomainError(t, err, apperrors.CodeValidation, http.StatusBadRequest)

	paid, err := svc.SetStatus(ctx, order.ID, domain.OrderStatusPaid, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, paid.Status)

	// Same status again is a no-op without an event.
	_, err = svc.SetStatus(ctx, order.ID, domain.OrderStatusPaid, "admin")
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{events.EventOrderPlaced, events.EventOrderStatusChanged}, sink.types())

	require.NoError(t, svc.Delete(ctx, order.ID))
	_, err = svc.Get(ctx, order.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestSearchService(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := seedProduct(t, store, "o", "c", "Blue Lamp", 9)
	seedProduct(t, store, "o", "c", "Red Chair", 9)
	require.NoError(t, store.Users.Create(ctx, &domain.User{Name: "Ana", Email: "ana@example.com", Active: true, Role: domain.RoleUser}))
	svc := NewSearchService(store.Users, store.Categories, store.Products)

	got, err := svc.Search(ctx, CollectionProduct, "lamp")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got.([]domain.Product)[0].ID)

	got, err = svc.Search(ctx, CollectionProduct, p.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, CollectionCategory, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Search(ctx, CollectionUsers, "EXAMPLE")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.Search(ctx, "orders", "x")
	de := requireDomainError(t, err, apperrors.CodeBadRequest, http.StatusBadRequest)
	assert.Equal(t, "Collection allowed are: users,category,product", de.Message)
}
