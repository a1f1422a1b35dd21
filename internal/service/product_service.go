package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// ProductService manages catalog products. Ownership of a product is
// enforced by the request pipeline before mutations reach this service.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	dispatcher events.Dispatcher
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
	Dispatcher   events.Dispatcher
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{
		products:   deps.ProductRepo,
		categories: deps.CategoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ProductInput describes a new product.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  string
	Img         *string
}

// ProductUpdateInput holds optional product changes.
type ProductUpdateInput struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	CategoryID  *string
	Img         *string
}

// Create lists a product owned by ownerID.
func (s *ProductService) Create(ctx context.Context, ownerID string, in ProductInput) (*domain.Product, error) {
	if err := s.requireActiveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	product := &domain.Product{
		OwnerUserID: ownerID,
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		Active:      true,
		Img:         in.Img,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, page repository.Page) ([]domain.Product, int, error) {
	products, total, err := s.products.ListActive(ctx, page)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	return products, total, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product")
	}
	return product, nil
}

// Update applies changes to an active product.
func (s *ProductService) Update(ctx context.Context, id string, in ProductUpdateInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product")
	}
	if !product.Active {
		return nil, apperrors.NewDomainError(apperrors.CodeNotFound, "Product blocked can't update his info", http.StatusNotFound, nil)
	}

	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		if err := s.requireActiveCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Img != nil {
		product.Img = in.Img
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "Product")
	}
	return product, nil
}

// Delete removes a product permanently.
func (s *ProductService) Delete(ctx context.Context, id, actorID string) (*domain.Product, error) {
	product, err := s.products.Delete(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product")
	}
	publishEvent(ctx, s.dispatcher, events.New(events.EventProductDeleted, product.ID, actorID, events.ProductDeletedPayload{
		OwnerUserID: product.OwnerUserID,
		Name:        product.Name,
	}))
	return product, nil
}

func (s *ProductService) requireActiveCategory(ctx context.Context, categoryID string) error {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return notFoundOr(err, "Category")
	}
	if !category.Active {
		return apperrors.NewValidationError("category is blocked", map[string]any{"categoryId": categoryID})
	}
	return nil
}
