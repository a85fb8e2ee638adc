package domain

import "github.com/shopspring/decimal"

// Cart mirrors the server-side cart for the current storefront session.
// Totals are whatever the backend last reported; the client never
// recomputes them.
type Cart struct {
	ID         int64           `json:"id"`
	SessionKey string          `json:"session_key,omitempty"`
	Items      []CartItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
}

type CartItem struct {
	ID          int64           `json:"id"`
	InventoryID int64           `json:"inventory_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Clone returns a deep copy, used to snapshot state before an
// optimistic mutation.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

// Item finds a line item by its server-assigned id.
func (c *Cart) Item(itemID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return CartItem{}, false
}

// ItemByInventory finds a line item by the inventory entry it references.
func (c *Cart) ItemByInventory(inventoryID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.InventoryID == inventoryID {
			return it, true
		}
	}
	return CartItem{}, false
}
