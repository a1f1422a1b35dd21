package domain

import "time"

// Product is a catalog entry owned by the user who listed it.
type Product struct {
	ID          string
	OwnerUserID string
	CategoryID  string
	Name        string
	Description string
	Price       float64
	Stock       int
	Active      bool
	Img         *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
