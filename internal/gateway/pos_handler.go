package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dukahub/storefront/internal/pos"
	"github.com/go-chi/chi/v5"
)

type POSHandler struct{}

type salesPageDTO struct {
	Sales     interface{} `json:"sales"`
	Count     int         `json:"count"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
	PageCount int         `json:"page_count"`
}

func (h *POSHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	q := r.URL.Query()
	filter := pos.Filter{
		SaleType: q.Get("sale_type"),
		Search:   q.Get("search"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		filter.PageSize = size
	}

	if err := s.POS.FetchSales(r.Context(), filter); err != nil {
		handleStoreError(w, err)
		return
	}

	p := s.POS.Pagination()
	respondJSON(w, http.StatusOK, salesPageDTO{
		Sales:     s.POS.Sales(),
		Count:     p.Count,
		Page:      p.Page,
		PageSize:  p.PageSize,
		PageCount: p.PageCount(),
	})
}

func (h *POSHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req pos.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_items", "a sale needs at least one item")
		return
	}

	sale, err := s.POS.CreateSale(r.Context(), req)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

func (h *POSHandler) CancelSale(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	saleID, err := strconv.ParseInt(chi.URLParam(r, "sale_id"), 10, 64)
	if err != nil || saleID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_sale_id", "sale_id must be a positive integer")
		return
	}

	if err := s.POS.CancelSale(r.Context(), saleID); err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *POSHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	stats, err := s.POS.Stats(r.Context())
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *POSHandler) ChartData(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	points, err := s.POS.ChartData(r.Context())
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}
