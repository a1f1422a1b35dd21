package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// Searchable collections.
const (
	CollectionUsers    = "users"
	CollectionCategory = "category"
	CollectionProduct  = "product"
)

var allowedCollections = []string{CollectionUsers, CollectionCategory, CollectionProduct}

// SearchService looks records up by id or by a case-insensitive term.
type SearchService struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

// NewSearchService constructs the service.
func NewSearchService(users repository.UserRepository, categories repository.CategoryRepository, products repository.ProductRepository) *SearchService {
	return &SearchService{users: users, categories: categories, products: products}
}

// Search returns matching records of collection. Results are users,
// categories or products depending on the collection.
func (s *SearchService) Search(ctx context.Context, collection, term string) (any, error) {
	term = strings.TrimSpace(term)
	_, idErr := uuid.Parse(term)
	byID := idErr == nil

	switch collection {
	case CollectionUsers:
		if byID {
			return oneOrNone(s.users.GetByID(ctx, term))
		}
		return wrapList(s.users.Search(ctx, term))
	case CollectionCategory:
		if byID {
			return oneOrNone(s.categories.GetByID(ctx, term))
		}
		return wrapList(s.categories.Search(ctx, term))
	case CollectionProduct:
		if byID {
			return oneOrNone(s.products.GetByID(ctx, term))
		}
		return wrapList(s.products.Search(ctx, term))
	default:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Collection allowed are: %s", strings.Join(allowedCollections, ",")))
	}
}

func oneOrNone[T any](item *T, err error) ([]T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return []T{}, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return []T{*item}, nil
}

func wrapList[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}
