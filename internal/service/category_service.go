package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// CategoryService manages catalog categories.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{Name: strings.TrimSpace(name), Active: true}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, page repository.Page) ([]domain.Category, int, error) {
	categories, total, err := s.categories.ListActive(ctx, page)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	return categories, total, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category")
	}
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, id, name string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category")
	}
	if !category.Active {
		return nil, apperrors.NewDomainError(apperrors.CodeNotFound, "Category blocked can't update his info", http.StatusNotFound, nil)
	}
	category.Name = strings.TrimSpace(name)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, notFoundOr(err, "Category")
	}
	return category, nil
}

// Deactivate soft-deletes a category.
func (s *CategoryService) Deactivate(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category")
	}
	if !category.Active {
		return nil, apperrors.NewBadRequest("Category is already blocked.")
	}
	category.Active = false
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, notFoundOr(err, "Category")
	}
	return category, nil
}
