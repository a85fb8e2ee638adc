package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dukahub/storefront/internal/checkout"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CheckoutHandler struct{}

type initiatePaymentDTO struct {
	OrderID int64           `json:"order_id"`
	Phone   string          `json:"phone"`
	Amount  decimal.Decimal `json:"amount"`
}

type paymentStatusDTO struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var buyer checkout.BuyerDetails
	if err := json.NewDecoder(r.Body).Decode(&buyer); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if buyer.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_customer_name", "customer_name is required")
		return
	}

	order, err := s.Checkout.Checkout(r.Context(), buyer)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req initiatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OrderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be positive")
		return
	}

	payment, err := s.Checkout.InitiatePayment(r.Context(), req.OrderID, req.Phone, req.Amount)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

// PaymentStatus checks the payment once; the storefront view calls
// this on its own schedule.
func (h *CheckoutHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	paymentID, err := strconv.ParseInt(chi.URLParam(r, "payment_id"), 10, 64)
	if err != nil || paymentID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_payment_id", "payment_id must be a positive integer")
		return
	}

	status, err := s.Checkout.CheckStatus(r.Context(), paymentID)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, paymentStatusDTO{
		Status: status.String(),
		State:  s.Checkout.State().String(),
	})
}

// AwaitPayment blocks on the coordinator's bounded polling loop and
// reports the final (or indeterminate) outcome.
func (h *CheckoutHandler) AwaitPayment(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	result, err := s.Checkout.PollUntilTerminal(r.Context())
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"result": string(result),
		"state":  s.Checkout.State().String(),
	})
}
