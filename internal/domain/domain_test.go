package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineItemsFor(t *testing.T) {
	items, total := LineItemsFor([]Product{
		{ID: "p1", Price: 10.5},
		{ID: "p2", Price: 4.5},
	})

	assert.Len(t, items, 2)
	assert.Equal(t, LineItem{ProductID: "p1", Quantity: 1, UnitPrice: 10.5}, items[0])
	assert.InDelta(t, 15.0, total, 0.0001)
}

func TestLineItemsFor_Empty(t *testing.T) {
	items, total := LineItemsFor(nil)

	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestIdentityFromUser(t *testing.T) {
	id := IdentityFromUser(&User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: RoleAdmin, Active: true, PasswordHash: "x"})

	assert.Equal(t, &Identity{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: RoleAdmin, Active: true}, id)
	assert.True(t, id.IsAdmin())

	var none *Identity
	assert.False(t, none.IsAdmin())
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("moderator").Valid())
	assert.True(t, OrderStatusPaid.Valid())
	assert.False(t, OrderStatus("shipped").Valid())
}
