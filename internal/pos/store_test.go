package pos

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukahub/storefront/internal/api"
	"github.com/dukahub/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend scripts responses per call and can hold a reply hostage
// to simulate out-of-order arrival.
type mockBackend struct {
	mu      sync.Mutex
	handler func(path string, opts api.RequestOptions, out any) error
}

func (m *mockBackend) Do(_ context.Context, path string, opts api.RequestOptions, out any) error {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	return h(path, opts, out)
}

func salePage(count, page, pageSize int, ids ...int64) domain.SalePage {
	sales := make([]domain.Sale, len(ids))
	for i, id := range ids {
		sales[i] = domain.Sale{ID: id, SaleType: "walk-in", Total: decimal.NewFromInt(100)}
	}
	return domain.SalePage{Count: count, Page: page, PageSize: pageSize, Results: sales}
}

func TestFetchSales_ReplacesListAndPagination(t *testing.T) {
	backend := &mockBackend{handler: func(path string, opts api.RequestOptions, out any) error {
		assert.Equal(t, api.AuthRequired, opts.Auth)
		*out.(*domain.SalePage) = salePage(45, 2, 20, 5, 6)
		return nil
	}}
	store := NewStore(backend)

	require.NoError(t, store.FetchSales(context.Background(), Filter{Page: 2, PageSize: 20}))

	sales := store.Sales()
	require.Len(t, sales, 2)
	assert.Equal(t, int64(5), sales[0].ID)

	p := store.Pagination()
	assert.Equal(t, 45, p.Count)
	assert.Equal(t, 3, p.PageCount())
}

func TestFetchSales_QueryString(t *testing.T) {
	var gotPath string
	backend := &mockBackend{handler: func(path string, opts api.RequestOptions, out any) error {
		gotPath = path
		*out.(*domain.SalePage) = salePage(0, 1, 20)
		return nil
	}}
	store := NewStore(backend)

	require.NoError(t, store.FetchSales(context.Background(), Filter{Page: 2, PageSize: 10, SaleType: "walk-in"}))
	assert.True(t, strings.HasPrefix(gotPath, "/sales/?"))
	assert.Contains(t, gotPath, "page=2")
	assert.Contains(t, gotPath, "page_size=10")
	assert.Contains(t, gotPath, "sale_type=walk-in")
}

func TestFetchSales_StaleReplyDiscarded(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	backend := &mockBackend{handler: func(path string, opts api.RequestOptions, out any) error {
		mu.Lock()
		calls++
		call := calls
		mu.Unlock()
		if call == 1 {
			// First fetch's reply arrives after the second completed.
			<-release
			*out.(*domain.SalePage) = salePage(10, 1, 20, 1)
			return nil
		}
		*out.(*domain.SalePage) = salePage(20, 1, 20, 2)
		return nil
	}}
	store := NewStore(backend)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, store.FetchSales(context.Background(), Filter{}))
	}()

	// Make sure the first fetch is in flight before issuing the second.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, store.FetchSales(context.Background(), Filter{Search: "newer"}))
	close(release)
	wg.Wait()

	sales := store.Sales()
	require.Len(t, sales, 1)
	assert.Equal(t, int64(2), sales[0].ID, "the superseded reply must not overwrite the newer one")
	assert.Equal(t, 20, store.Pagination().Count)
}

func TestCreateSale_PrependsServerRecord(t *testing.T) {
	backend := &mockBackend{handler: func(path string, opts api.RequestOptions, out any) error {
		switch {
		case strings.HasPrefix(path, "/sales/?"), path == "/sales/":
			*out.(*domain.SalePage) = salePage(1, 1, 20, 5)
		case path == "/sales/create/":
			assert.Equal(t, http.MethodPost, opts.Method)
			*out.(*domain.Sale) = domain.Sale{ID: 42, SaleType: "walk-in", Total: decimal.NewFromInt(300)}
		}
		return nil
	}}
	store := NewStore(backend)

	require.NoError(t, store.FetchSales(context.Background(), Filter{}))

	sale, err := store.CreateSale(context.Background(), CreateSaleRequest{
		SaleType: "walk-in",
		Items:    []CreateSaleItem{{InventoryID: 7, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), sale.ID)

	sales := store.Sales()
	require.Len(t, sales, 2)
	assert.Equal(t, int64(42), sales[0].ID, "created sale is prepended")
	assert.Equal(t, 2, store.Pagination().Count)
}

func TestCancelSale_RemovesAndClearsSelection(t *testing.T) {
	backend := &mockBackend{handler: func(path string, opts api.RequestOptions, out any) error {
		switch {
		case path == "/sales/":
			*out.(*domain.SalePage) = salePage(2, 1, 20, 5, 6)
		case path == "/sales/5/delete/":
			assert.Equal(t, http.MethodDelete, opts.Method)
		}
		return nil
	}}
	store := NewStore(backend)

	require.NoError(t, store.FetchSales(context.Background(), Filter{}))
	sales := store.Sales()
	store.SelectSale(&sales[0])
	require.NotNil(t, store.Selected())

	require.NoError(t, store.CancelSale(context.Background(), 5))

	remaining := store.Sales()
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(6), remaining[0].ID)
	assert.Nil(t, store.Selected(), "cancelling the selected sale clears the selection")
	assert.Equal(t, 1, store.Pagination().Count)
}

func TestCancelSale_ErrorKeepsList(t *testing.T) {
	boom := errors.New("boom")
	backend := &mockBackend{handler: func(path string, opts api.RequestOptions, out any) error {
		if path == "/sales/" {
			*out.(*domain.SalePage) = salePage(1, 1, 20, 5)
			return nil
		}
		return boom
	}}
	store := NewStore(backend)

	require.NoError(t, store.FetchSales(context.Background(), Filter{}))
	err := store.CancelSale(context.Background(), 5)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Err(), boom)
	assert.Len(t, store.Sales(), 1, "the sale stays until the server confirms")
}

func TestSelectSale_NilDeselects(t *testing.T) {
	store := NewStore(&mockBackend{handler: func(string, api.RequestOptions, any) error { return nil }})

	store.SelectSale(&domain.Sale{ID: 9})
	require.NotNil(t, store.Selected())

	store.SelectSale(nil)
	assert.Nil(t, store.Selected())
}

func TestStats_And_ChartData(t *testing.T) {
	backend := &mockBackend{handler: func(path string, opts api.RequestOptions, out any) error {
		assert.Equal(t, api.AuthRequired, opts.Auth)
		switch path {
		case "/sales/stats/":
			*out.(*Stats) = Stats{SaleCount: 12, TotalSales: decimal.NewFromInt(4500)}
		case "/sales/chart-data/":
			*out.(*[]ChartPoint) = []ChartPoint{{Label: "Mon", Total: decimal.NewFromInt(100)}}
		}
		return nil
	}}
	store := NewStore(backend)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.SaleCount)

	points, err := store.ChartData(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Mon", points[0].Label)
}
