// Package memstore holds in-memory repositories used by handler and service
// tests. They follow the pgx conventions of the real repositories: a missing
// or malformed id yields pgx.ErrNoRows.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
)

// ErrUnavailable can be injected to simulate a storage outage.
var ErrUnavailable = errors.New("memstore: unavailable")

// Store bundles one in-memory repository per table.
type Store struct {
	Users      *Users
	Categories *Categories
	Products   *Products
	Carts      *Carts
	Orders     *Orders
	Attempts   *LoginAttempts
}

// New returns an empty store.
func New() *Store {
	return &Store{
		Users:      &Users{table: newTable[domain.User]()},
		Categories: &Categories{table: newTable[domain.Category]()},
		Products:   &Products{table: newTable[domain.Product]()},
		Carts:      &Carts{table: newTable[domain.Cart]()},
		Orders:     &Orders{table: newTable[domain.Order]()},
		Attempts:   &LoginAttempts{counts: map[string]int{}},
	}
}

type table[T any] struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]T
	fail  error
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]T{}}
}

func (t *table[T]) insert(id string, row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var zero T
	if t.fail != nil {
		return zero, t.fail
	}
	row, ok := t.rows[id]
	if !ok {
		return zero, pgx.ErrNoRows
	}
	return row, nil
}

func (t *table[T]) remove(id string) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	if t.fail != nil {
		return zero, t.fail
	}
	row, ok := t.rows[id]
	if !ok {
		return zero, pgx.ErrNoRows
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return row, nil
}

func (t *table[T]) filter(keep func(T) bool) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.fail != nil {
		return nil, t.fail
	}
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		if row := t.rows[id]; keep(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (t *table[T]) setFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fail = err
}

func paginate[T any](rows []T, page repository.Page) []T {
	if page.Offset >= len(rows) {
		return []T{}
	}
	rows = rows[page.Offset:]
	if page.Limit > 0 && page.Limit < len(rows) {
		rows = rows[:page.Limit]
	}
	return rows
}

func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

func stamp(id *string, created, updated *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Users is an in-memory repository.UserRepository.
type Users struct{ table *table[domain.User] }

// Fail makes every read return err until called with nil.
func (r *Users) Fail(err error) { r.table.setFailure(err) }

func (r *Users) Create(_ context.Context, user *domain.User) error {
	existing, _ := r.table.filter(func(u domain.User) bool { return strings.EqualFold(u.Email, user.Email) })
	if len(existing) > 0 {
		return repository.ErrDuplicate
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.table.insert(user.ID, *user)
	return nil
}

func (r *Users) Update(_ context.Context, user *domain.User) error {
	if _, err := r.table.get(user.ID); err != nil {
		return err
	}
	clash, _ := r.table.filter(func(u domain.User) bool {
		return u.ID != user.ID && strings.EqualFold(u.Email, user.Email)
	})
	if len(clash) > 0 {
		return repository.ErrDuplicate
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.table.insert(user.ID, *user)
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	found, err := r.table.filter(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &found[0], nil
}

func (r *Users) ListActive(_ context.Context, page repository.Page) ([]domain.User, int, error) {
	users, err := r.table.filter(func(u domain.User) bool { return u.Active })
	if err != nil {
		return nil, 0, err
	}
	return paginate(users, page), len(users), nil
}

func (r *Users) Search(_ context.Context, term string) ([]domain.User, error) {
	return r.table.filter(func(u domain.User) bool {
		return u.Active && (containsFold(u.Name, term) || containsFold(u.Email, term))
	})
}

func (r *Users) OwnerOf(_ context.Context, id string) (string, error) {
	user, err := r.table.get(id)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Categories is an in-memory repository.CategoryRepository.
type Categories struct{ table *table[domain.Category] }

func (r *Categories) Create(_ context.Context, category *domain.Category) error {
	stamp(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	r.table.insert(category.ID, *category)
	return nil
}

func (r *Categories) Update(_ context.Context, category *domain.Category) error {
	if _, err := r.table.get(category.ID); err != nil {
		return err
	}
	stamp(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	r.table.insert(category.ID, *category)
	return nil
}

func (r *Categories) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Categories) ListActive(_ context.Context, page repository.Page) ([]domain.Category, int, error) {
	categories, err := r.table.filter(func(c domain.Category) bool { return c.Active })
	if err != nil {
		return nil, 0, err
	}
	return paginate(categories, page), len(categories), nil
}

func (r *Categories) Search(_ context.Context, term string) ([]domain.Category, error) {
	return r.table.filter(func(c domain.Category) bool { return c.Active && containsFold(c.Name, term) })
}

// Products is an in-memory repository.ProductRepository.
type Products struct{ table *table[domain.Product] }

func (r *Products) Create(_ context.Context, product *domain.Product) error {
	stamp(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	r.table.insert(product.ID, *product)
	return nil
}

func (r *Products) Update(_ context.Context, product *domain.Product) error {
	if _, err := r.table.get(product.ID); err != nil {
		return err
	}
	stamp(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	r.table.insert(product.ID, *product)
	return nil
}

func (r *Products) Delete(_ context.Context, id string) (*domain.Product, error) {
	product, err := r.table.remove(id)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Products) GetByID(_ context.Context, id string) (*domain.Product, error) {
	product, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Products) GetMany(_ context.Context, ids []string) ([]domain.Product, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	products, err := r.table.filter(func(p domain.Product) bool { return wanted[p.ID] })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *Products) ListActive(_ context.Context, page repository.Page) ([]domain.Product, int, error) {
	products, err := r.table.filter(func(p domain.Product) bool { return p.Active })
	if err != nil {
		return nil, 0, err
	}
	return paginate(products, page), len(products), nil
}

func (r *Products) Search(_ context.Context, term string) ([]domain.Product, error) {
	return r.table.filter(func(p domain.Product) bool {
		return p.Active && (containsFold(p.Name, term) || containsFold(p.Description, term))
	})
}

func (r *Products) OwnerOf(_ context.Context, id string) (string, error) {
	product, err := r.table.get(id)
	if err != nil {
		return "", err
	}
	return product.OwnerUserID, nil
}

// Carts is an in-memory repository.CartRepository.
type Carts struct{ table *table[domain.Cart] }

func (r *Carts) Create(_ context.Context, cart *domain.Cart) error {
	stamp(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	r.table.insert(cart.ID, *cart)
	return nil
}

func (r *Carts) Update(_ context.Context, cart *domain.Cart) error {
	if _, err := r.table.get(cart.ID); err != nil {
		return err
	}
	stamp(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	r.table.insert(cart.ID, *cart)
	return nil
}

func (r *Carts) Delete(_ context.Context, id string) error {
	_, err := r.table.remove(id)
	return err
}

func (r *Carts) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	cart, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Carts) List(_ context.Context, page repository.Page) ([]domain.Cart, int, error) {
	carts, err := r.table.filter(func(domain.Cart) bool { return true })
	if err != nil {
		return nil, 0, err
	}
	return paginate(carts, page), len(carts), nil
}

func (r *Carts) OwnerOf(_ context.Context, id string) (string, error) {
	cart, err := r.table.get(id)
	if err != nil {
		return "", err
	}
	return cart.UserID, nil
}

// Orders is an in-memory repository.OrderRepository.
type Orders struct{ table *table[domain.Order] }

func (r *Orders) Create(_ context.Context, order *domain.Order) error {
	stamp(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	r.table.insert(order.ID, *order)
	return nil
}

func (r *Orders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	stamp(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	r.table.insert(order.ID, order)
	return &order, nil
}

func (r *Orders) Delete(_ context.Context, id string) error {
	_, err := r.table.remove(id)
	return err
}

func (r *Orders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	order, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Orders) List(_ context.Context, page repository.Page) ([]domain.Order, int, error) {
	orders, err := r.table.filter(func(domain.Order) bool { return true })
	if err != nil {
		return nil, 0, err
	}
	return paginate(orders, page), len(orders), nil
}

func (r *Orders) OwnerOf(_ context.Context, id string) (string, error) {
	order, err := r.table.get(id)
	if err != nil {
		return "", err
	}
	return order.UserID, nil
}

// LoginAttempts is an in-memory repository.LoginAttemptRepository. Windows
// never expire.
type LoginAttempts struct {
	mu     sync.Mutex
	counts map[string]int
	fail   error
}

// Fail makes every call return err until called with nil.
func (r *LoginAttempts) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func attemptKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *LoginAttempts) Failures(_ context.Context, email string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	return r.counts[attemptKey(email)], nil
}

func (r *LoginAttempts) RecordFailure(_ context.Context, email string, _ time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	r.counts[attemptKey(email)]++
	return r.counts[attemptKey(email)], nil
}

func (r *LoginAttempts) Reset(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	delete(r.counts, attemptKey(email))
	return nil
}

var (
	_ repository.UserRepository         = (*Users)(nil)
	_ repository.CategoryRepository     = (*Categories)(nil)
	_ repository.ProductRepository      = (*Products)(nil)
	_ repository.CartRepository         = (*Carts)(nil)
	_ repository.OrderRepository        = (*Orders)(nil)
	_ repository.LoginAttemptRepository = (*LoginAttempts)(nil)
)
