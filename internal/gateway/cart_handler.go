package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type CartHandler struct{}

type addItemRequestDTO struct {
	InventoryID int64 `json:"inventory_id"`
	Quantity    int   `json:"quantity"`
}

type updateItemRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	cart, err := s.Cart.Fetch(r.Context())
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.InventoryID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_inventory_id", "inventory_id must be positive")
		return
	}

	if err := s.Cart.AddItem(r.Context(), req.InventoryID, req.Quantity); err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.Cart.Snapshot())
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return
	}

	var req updateItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.Cart.UpdateItem(r.Context(), itemID, req.Quantity); err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Cart.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return
	}

	if err := s.Cart.RemoveItem(r.Context(), itemID); err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Cart.Snapshot())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	if err := s.Cart.Clear(r.Context()); err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Cart.Snapshot())
}
