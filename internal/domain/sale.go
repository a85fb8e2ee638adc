package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a point-of-sale transaction as stored by the backend.
type Sale struct {
	ID           int64           `json:"id"`
	SaleType     string          `json:"sale_type"`
	CustomerName string          `json:"customer_name,omitempty"`
	Items        []SaleItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type SaleItem struct {
	InventoryID int64           `json:"inventory_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SalePage is the paginated shape the backend returns for sale listings.
type SalePage struct {
	Count    int    `json:"count"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Results  []Sale `json:"results"`
}

// Pagination is the client-side view of a paginated listing.
type Pagination struct {
	Count    int
	Page     int
	PageSize int
}

// PageCount is ceil(Count / PageSize).
func (p Pagination) PageCount() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Count + p.PageSize - 1) / p.PageSize
}
