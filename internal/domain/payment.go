package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the server-reported state of a payment. The client
// only ever mirrors it; transitions happen on the gateway side.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}

type Payment struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Phone      string          `json:"phone,omitempty"`
	Status     PaymentStatus   `json:"status"`
	GatewayRef string          `json:"gateway_ref,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Order is the record produced when a cart is checked out.
type Order struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}
