package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// CategoryRepository persists catalog categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	ListActive(ctx context.Context, page Page) ([]domain.Category, int, error)
	Search(ctx context.Context, term string) ([]domain.Category, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

const categoryColumns = `id, name, active, created_at, updated_at`

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name, active) VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, category.Name, category.Active).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	const query = `
        UPDATE categories SET name=$1, active=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	if !validID(category.ID) {
		return pgx.ErrNoRows
	}
	return r.pool.QueryRow(ctx, query, category.Name, category.Active, category.ID).Scan(&category.UpdatedAt)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	return scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id))
}

func (r *categoryRepository) ListActive(ctx context.Context, page Page) ([]domain.Category, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+categoryColumns+` FROM categories WHERE active
        ORDER BY name, id LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	categories, err := collectCategories(rows)
	return categories, total, err
}

func (r *categoryRepository) Search(ctx context.Context, term string) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+categoryColumns+` FROM categories
        WHERE active AND name ILIKE $1 ORDER BY name`, likePattern(term))
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(&category.ID, &category.Name, &category.Active, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

func collectCategories(rows pgx.Rows) ([]domain.Category, error) {
	defer rows.Close()
	categories := make([]domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}
