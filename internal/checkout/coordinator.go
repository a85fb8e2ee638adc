// Package checkout drives the multi-step checkout: converting the cart
// to an order, initiating a payment, and following the payment to a
// terminal state via polling or gateway callbacks.
package checkout

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dukahub/storefront/internal/api"
	"github.com/dukahub/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Backend is the slice of the API client the coordinator uses.
type Backend interface {
	Do(ctx context.Context, path string, opts api.RequestOptions, out any) error
}

// CartClearer empties the local cart store after a successful checkout.
type CartClearer interface {
	Clear(ctx context.Context) error
}

var errIllegalTransition = errors.New("illegal transition of payment state")

// BuyerDetails is the checkout form payload.
type BuyerDetails struct {
	Name    string `json:"customer_name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

type initiatePaymentRequest struct {
	OrderID int64           `json:"order_id"`
	Phone   string          `json:"phone"`
	Amount  decimal.Decimal `json:"amount"`
}

// Coordinator runs one payment attempt at a time for a session.
type Coordinator struct {
	backend      Backend
	cart         CartClearer // optional
	pollInterval time.Duration
	maxAttempts  int

	mu      sync.Mutex
	state   State
	payment *domain.Payment
}

type Option func(*Coordinator)

// WithPolling overrides the status poll interval and attempt budget.
func WithPolling(interval time.Duration, maxAttempts int) Option {
	return func(c *Coordinator) {
		c.pollInterval = interval
		c.maxAttempts = maxAttempts
	}
}

func NewCoordinator(backend Backend, cart CartClearer, opts ...Option) *Coordinator {
	c := &Coordinator{
		backend:      backend,
		cart:         cart,
		pollInterval: 3 * time.Second,
		maxAttempts:  20,
		state:        StateNotStarted,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Payment returns the pending payment record, nil outside an attempt.
func (c *Coordinator) Payment() *domain.Payment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payment == nil {
		return nil
	}
	p := *c.payment
	return &p
}

// Checkout converts the session cart into an order. Buyer phone is
// normalized before submission. On success the local cart is cleared.
func (c *Coordinator) Checkout(ctx context.Context, buyer BuyerDetails) (*domain.Order, error) {
	phone, err := NormalizePhone(buyer.Phone)
	if err != nil {
		return nil, err
	}
	buyer.Phone = phone

	var order domain.Order
	err = c.backend.Do(ctx, "/sales/checkout/", api.RequestOptions{
		Method: http.MethodPost,
		Body:   buyer,
	}, &order)
	if err != nil {
		return nil, err
	}

	if c.cart != nil {
		if clearErr := c.cart.Clear(ctx); clearErr != nil {
			log.Printf("cart clear after checkout failed: %v", clearErr)
		}
	}
	return &order, nil
}

// InitiatePayment starts a payment for an order. On any failure the
// attempt returns to not_started and no partial payment record is
// kept; success leaves the attempt pending with the gateway's
// correlation id recorded.
func (c *Coordinator) InitiatePayment(ctx context.Context, orderID int64, phone string, amount decimal.Decimal) (*domain.Payment, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	if err := c.transition(StateInitiating); err != nil {
		return nil, err
	}

	var payment domain.Payment
	err = c.backend.Do(ctx, "/payments/initiate/", api.RequestOptions{
		Method: http.MethodPost,
		Body:   initiatePaymentRequest{OrderID: orderID, Phone: normalized, Amount: amount},
		Auth:   api.AuthRequired,
	}, &payment)
	if err != nil {
		c.reset()
		return nil, err
	}

	c.mu.Lock()
	c.state = StatePending
	c.payment = &payment
	c.mu.Unlock()
	return &payment, nil
}

// PollUntilTerminal checks the payment status at a fixed interval
// until the backend reports a terminal state, the attempt budget runs
// out (indeterminate), or ctx is cancelled.
func (c *Coordinator) PollUntilTerminal(ctx context.Context) (PollResult, error) {
	c.mu.Lock()
	if c.state != StatePending || c.payment == nil {
		c.mu.Unlock()
		return ResultIndeterminate, errIllegalTransition
	}
	paymentID := c.payment.ID
	c.mu.Unlock()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ResultIndeterminate, ctx.Err()
		case <-ticker.C:
		}

		status, err := c.fetchStatus(ctx, paymentID)
		if err != nil {
			// Transient failure, the budget bounds how long we keep at it.
			log.Printf("payment %d status poll failed: %v", paymentID, err)
			continue
		}
		if c.ApplyServerStatus(paymentID, status) {
			if status == domain.PaymentStatusSuccess {
				return ResultSuccess, nil
			}
			return ResultFailed, nil
		}
	}
	return ResultIndeterminate, nil
}

// ApplyServerStatus applies a server-reported payment status, whether
// it came from a poll or a gateway callback. Returns true when it
// moved the attempt to a terminal state.
func (c *Coordinator) ApplyServerStatus(paymentID int64, status domain.PaymentStatus) bool {
	if !status.IsTerminal() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payment == nil || c.payment.ID != paymentID {
		return false
	}

	to := StateFailed
	if status == domain.PaymentStatusSuccess {
		to = StateSuccess
	}
	if !CanTransitionTo(c.state, to) {
		return false
	}
	c.state = to
	c.payment.Status = status
	return true
}

// CheckStatus fetches the payment's server-side status once and
// applies it to the current attempt. Used by callers doing their own
// poll scheduling.
func (c *Coordinator) CheckStatus(ctx context.Context, paymentID int64) (domain.PaymentStatus, error) {
	status, err := c.fetchStatus(ctx, paymentID)
	if err != nil {
		return "", err
	}
	c.ApplyServerStatus(paymentID, status)
	return status, nil
}

func (c *Coordinator) fetchStatus(ctx context.Context, paymentID int64) (domain.PaymentStatus, error) {
	var payment domain.Payment
	err := c.backend.Do(ctx, "/payments/"+strconv.FormatInt(paymentID, 10)+"/", api.RequestOptions{
		Auth: api.AuthRequired,
	}, &payment)
	if err != nil {
		return "", err
	}
	return payment.Status, nil
}

// Reset abandons a finished or stuck attempt so a new one can start.
func (c *Coordinator) Reset() {
	c.reset()
}

func (c *Coordinator) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateNotStarted
	c.payment = nil
}

func (c *Coordinator) transition(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !CanTransitionTo(c.state, to) {
		return errIllegalTransition
	}
	c.state = to
	return nil
}
