package service

import (
	"context"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// CartService manages carts.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartService constructs the service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Create builds a cart for userID from the given product ids.
func (s *CartService) Create(ctx context.Context, userID string, productIDs []string) (*domain.Cart, error) {
	items, total, err := priceProducts(ctx, s.products, productIDs)
	if err != nil {
		return nil, err
	}
	cart := &domain.Cart{UserID: userID, Products: items, TotalPrice: total}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return cart, nil
}

func (s *CartService) List(ctx context.Context, page repository.Page) ([]domain.Cart, int, error) {
	carts, total, err := s.carts.List(ctx, page)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	return carts, total, nil
}

func (s *CartService) Get(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Cart")
	}
	return cart, nil
}

// ReplaceProducts reprices the cart from a new product list.
func (s *CartService) ReplaceProducts(ctx context.Context, id string, productIDs []string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Cart")
	}
	items, total, err := priceProducts(ctx, s.products, productIDs)
	if err != nil {
		return nil, err
	}
	cart.Products = items
	cart.TotalPrice = total
	if err := s.carts.Update(ctx, cart); err != nil {
		return nil, notFoundOr(err, "Cart")
	}
	return cart, nil
}

func (s *CartService) Delete(ctx context.Context, id string) error {
	if err := s.carts.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Cart")
	}
	return nil
}

// priceProducts resolves ids to products, one line item each.
func priceProducts(ctx context.Context, products repository.ProductRepository, productIDs []string) ([]domain.LineItem, float64, error) {
	if len(productIDs) == 0 {
		return nil, 0, apperrors.NewValidationError("Must provide an array of products.", nil)
	}
	found, err := products.GetMany(ctx, productIDs)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	if len(found) == 0 {
		return nil, 0, apperrors.NewNotFound("Products with IDs provided", map[string]any{"productsIds": productIDs})
	}
	items, total := domain.LineItemsFor(found)
	return items, total, nil
}
