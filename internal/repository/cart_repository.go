package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// CartRepository persists carts. Line items live in a JSONB document column.
type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	Update(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	List(ctx context.Context, page Page) ([]domain.Cart, int, error)
	OwnerOf(ctx context.Context, id string) (string, error)
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository instantiates repository.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

const cartColumns = `id, user_id, products, total_price, stripe_id, created_at, updated_at`

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	const query = `
        INSERT INTO carts (user_id, products, total_price, stripe_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, cart.UserID, cart.Products, cart.TotalPrice, cart.StripeID).
		Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

func (r *cartRepository) Update(ctx context.Context, cart *domain.Cart) error {
	const query = `
        UPDATE carts SET products=$1, total_price=$2, stripe_id=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	if !validID(cart.ID) {
		return pgx.ErrNoRows
	}
	return r.pool.QueryRow(ctx, query, cart.Products, cart.TotalPrice, cart.StripeID, cart.ID).Scan(&cart.UpdatedAt)
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	return scanCart(r.pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id=$1`, id))
}

func (r *cartRepository) List(ctx context.Context, page Page) ([]domain.Cart, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM carts`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+cartColumns+` FROM carts
        ORDER BY created_at, id LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	carts := make([]domain.Cart, 0)
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, 0, err
		}
		carts = append(carts, *cart)
	}
	return carts, total, rows.Err()
}

func (r *cartRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	if !validID(id) {
		return "", pgx.ErrNoRows
	}
	var owner string
	if err := r.pool.QueryRow(ctx, `SELECT user_id FROM carts WHERE id=$1`, id).Scan(&owner); err != nil {
		return "", err
	}
	return owner, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	if err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Products,
		&cart.TotalPrice,
		&cart.StripeID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cart, nil
}
