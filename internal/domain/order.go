package domain

import "time"

// OrderStatus enumerates payment states of an order.
type OrderStatus string

const (
	OrderStatusInProcess OrderStatus = "in process"
	OrderStatusPaid      OrderStatus = "is paid"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	return s == OrderStatusInProcess || s == OrderStatusPaid
}

// Order is a placed purchase.
type Order struct {
	ID         string
	UserID     string
	Products   []LineItem
	TotalPrice float64
	Status     OrderStatus
	StripeID   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
