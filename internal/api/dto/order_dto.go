package dto

import (
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
)

// ProductsRequest carries the product ids of a cart or order.
type ProductsRequest struct {
	ProductIDs []string `json:"productsIds"`
}

// OrderStatusRequest payload for PUT /api/orders/:id.
type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required,oneof='in process' 'is paid'"`
}

type CartResponse struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user"`
	Products   []domain.LineItem `json:"products"`
	TotalPrice float64           `json:"totalPrice"`
	StripeID   *string           `json:"stripeId,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func NewCartResponse(c *domain.Cart) CartResponse {
	return CartResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Products:   lineItems(c.Products),
		TotalPrice: c.TotalPrice,
		StripeID:   c.StripeID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func NewCartResponses(carts []domain.Cart) []CartResponse {
	out := make([]CartResponse, 0, len(carts))
	for i := range carts {
		out = append(out, NewCartResponse(&carts[i]))
	}
	return out
}

type OrderResponse struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user"`
	Products   []domain.LineItem  `json:"products"`
	TotalPrice float64            `json:"totalPrice"`
	Status     domain.OrderStatus `json:"status"`
	StripeID   *string            `json:"stripeId,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func NewOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Products:   lineItems(o.Products),
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		StripeID:   o.StripeID,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func NewOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

func lineItems(items []domain.LineItem) []domain.LineItem {
	if items == nil {
		return []domain.LineItem{}
	}
	return items
}
