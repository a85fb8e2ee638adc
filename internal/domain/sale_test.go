package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		pageSize int
		want     int
	}{
		{"partial last page", 45, 20, 3},
		{"exact pages", 40, 20, 2},
		{"single page", 5, 20, 1},
		{"empty", 0, 20, 0},
		{"zero page size", 45, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pagination{Count: tt.count, PageSize: tt.pageSize}
			assert.Equal(t, tt.want, p.PageCount())
		})
	}
}

func TestCartClone_IndependentItems(t *testing.T) {
	cart := &Cart{
		ID:    1,
		Items: []CartItem{{ID: 10, InventoryID: 7, Quantity: 2}},
	}

	clone := cart.Clone()
	clone.Items[0].Quantity = 99

	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartClone_Nil(t *testing.T) {
	var cart *Cart
	assert.Nil(t, cart.Clone())
}

func TestCartItemLookups(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ID: 10, InventoryID: 7, Quantity: 2},
		{ID: 11, InventoryID: 8, Quantity: 1},
	}}

	item, ok := cart.Item(11)
	assert.True(t, ok)
	assert.Equal(t, int64(8), item.InventoryID)

	_, ok = cart.Item(12)
	assert.False(t, ok)

	item, ok = cart.ItemByInventory(7)
	assert.True(t, ok)
	assert.Equal(t, int64(10), item.ID)
}
