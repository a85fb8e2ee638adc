// Package pos holds the in-person point-of-sale session: the sale
// list, its pagination, and the UI selection pointer.
package pos

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/dukahub/storefront/internal/api"
	"github.com/dukahub/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Backend is the slice of the API client the store uses.
type Backend interface {
	Do(ctx context.Context, path string, opts api.RequestOptions, out any) error
}

// Filter narrows and pages the sale listing.
type Filter struct {
	Page     int
	PageSize int
	SaleType string
	Search   string
}

func (f Filter) query() string {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.SaleType != "" {
		q.Set("sale_type", f.SaleType)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// CreateSaleRequest is the POS sale creation payload.
type CreateSaleRequest struct {
	SaleType     string           `json:"sale_type"`
	CustomerName string           `json:"customer_name,omitempty"`
	Items        []CreateSaleItem `json:"items"`
	AmountPaid   decimal.Decimal  `json:"amount_paid"`
}

type CreateSaleItem struct {
	InventoryID int64 `json:"inventory_id"`
	Quantity    int   `json:"quantity"`
}

// Stats is the reporting summary behind the admin dashboard.
type Stats struct {
	TotalSales decimal.Decimal `json:"total_sales"`
	TodaySales decimal.Decimal `json:"today_sales"`
	SaleCount  int             `json:"sale_count"`
}

// ChartPoint is one bucket of the sales chart.
type ChartPoint struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// Store holds the sale list for one admin session. Mutations are
// serialized; list fetches are tagged with a sequence so a refetch
// with new filters supersedes a still-pending older one, whose reply
// is then discarded.
type Store struct {
	backend Backend

	opMu sync.Mutex // serializes mutating operations

	mu         sync.RWMutex // guards the fields below
	sales      []domain.Sale
	pagination domain.Pagination
	selected   *domain.Sale
	loading    bool
	lastErr    error
	fetchSeq   uint64
	fetchDone  uint64
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) Sales() []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Sale, len(s.sales))
	copy(out, s.sales)
	return out
}

func (s *Store) Pagination() domain.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

func (s *Store) Selected() *domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	sel := *s.selected
	return &sel
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// FetchSales replaces the sale list and pagination from the backend's
// paginated response. A reply that arrives after a newer fetch was
// issued is dropped.
func (s *Store) FetchSales(ctx context.Context, f Filter) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	var page domain.SalePage
	err := s.backend.Do(ctx, "/sales/"+f.query(), api.RequestOptions{Auth: api.AuthRequired}, &page)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if seq < s.fetchSeq || seq <= s.fetchDone {
		// Superseded by a newer fetch; ignore this reply entirely.
		return nil
	}
	if err != nil {
		s.lastErr = err
		return err
	}
	s.fetchDone = seq
	s.sales = page.Results
	s.pagination = domain.Pagination{Count: page.Count, Page: page.Page, PageSize: page.PageSize}
	return nil
}

// CreateSale posts a new POS sale and prepends the server's record,
// which is authoritative for the id and computed fields.
func (s *Store) CreateSale(ctx context.Context, req CreateSaleRequest) (*domain.Sale, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading(true)
	var sale domain.Sale
	err := s.backend.Do(ctx, "/sales/create/", api.RequestOptions{
		Method: http.MethodPost,
		Body:   req,
		Auth:   api.AuthRequired,
	}, &sale)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	s.lastErr = nil
	s.sales = append([]domain.Sale{sale}, s.sales...)
	s.pagination.Count++
	return &sale, nil
}

// CancelSale removes a sale after server confirmation, clearing the
// selection if the cancelled sale was selected.
func (s *Store) CancelSale(ctx context.Context, saleID int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading(true)
	err := s.backend.Do(ctx, "/sales/"+strconv.FormatInt(saleID, 10)+"/delete/", api.RequestOptions{
		Method: http.MethodDelete,
		Auth:   api.AuthRequired,
	}, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	for i, sale := range s.sales {
		if sale.ID == saleID {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			if s.pagination.Count > 0 {
				s.pagination.Count--
			}
			break
		}
	}
	if s.selected != nil && s.selected.ID == saleID {
		s.selected = nil
	}
	return nil
}

// SelectSale moves the UI focus pointer; nil deselects. Persisted
// state is unaffected.
func (s *Store) SelectSale(sale *domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale == nil {
		s.selected = nil
		return
	}
	sel := *sale
	s.selected = &sel
}

// Stats fetches the reporting summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.backend.Do(ctx, "/sales/stats/", api.RequestOptions{Auth: api.AuthRequired}, &stats); err != nil {
		s.recordErr(err)
		return nil, err
	}
	return &stats, nil
}

// ChartData fetches the sales chart buckets.
func (s *Store) ChartData(ctx context.Context) ([]ChartPoint, error) {
	var points []ChartPoint
	if err := s.backend.Do(ctx, "/sales/chart-data/", api.RequestOptions{Auth: api.AuthRequired}, &points); err != nil {
		s.recordErr(err)
		return nil, err
	}
	return points, nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *Store) recordErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
