package domain

import "time"

// LineItem references a product and quantity inside a cart or order.
// Line items are stored as a JSON document on their parent row.
type LineItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Cart is a user's pending selection of products.
type Cart struct {
	ID         string
	UserID     string
	Products   []LineItem
	TotalPrice float64
	StripeID   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LineItemsFor builds one line item per product with quantity 1 and returns the summed price.
func LineItemsFor(products []Product) ([]LineItem, float64) {
	items := make([]LineItem, 0, len(products))
	var total float64
	for _, p := range products {
		items = append(items, LineItem{ProductID: p.ID, Quantity: 1, UnitPrice: p.Price})
		total += p.Price
	}
	return items, total
}
