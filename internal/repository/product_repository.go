package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetMany(ctx context.Context, ids []string) ([]domain.Product, error)
	ListActive(ctx context.Context, page Page) ([]domain.Product, int, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	OwnerOf(ctx context.Context, id string) (string, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, owner_user_id, category_id, name, description, price, stock, active, img, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (owner_user_id, category_id, name, description, price, stock, active, img)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		product.OwnerUserID,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Active,
		product.Img,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET category_id=$1, name=$2, description=$3, price=$4, stock=$5,
            active=$6, img=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	if !validID(product.ID) {
		return pgx.ErrNoRows
	}
	return r.pool.QueryRow(ctx, query,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Active,
		product.Img,
		product.ID,
	).Scan(&product.UpdatedAt)
}

func (r *productRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	return scanProduct(r.pool.QueryRow(ctx, `DELETE FROM products WHERE id=$1 RETURNING `+productColumns, id))
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

// GetMany returns the products among ids that exist, skipping malformed ids.
func (r *productRepository) GetMany(ctx context.Context, ids []string) ([]domain.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []domain.Product{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id::text = ANY($1) ORDER BY name`, valid)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) ListActive(ctx context.Context, page Page) ([]domain.Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+productColumns+` FROM products WHERE active
        ORDER BY created_at, id LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	products, err := collectProducts(rows)
	return products, total, err
}

func (r *productRepository) Search(ctx context.Context, term string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+productColumns+` FROM products
        WHERE active AND (name ILIKE $1 OR description ILIKE $1)
        ORDER BY name`, likePattern(term))
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	if !validID(id) {
		return "", pgx.ErrNoRows
	}
	var owner string
	if err := r.pool.QueryRow(ctx, `SELECT owner_user_id FROM products WHERE id=$1`, id).Scan(&owner); err != nil {
		return "", err
	}
	return owner, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.OwnerUserID,
		&product.CategoryID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.Active,
		&product.Img,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}
