// Package cart keeps the session's shopping cart in memory and
// reconciles it with the backend's authoritative cart resource after
// every mutation.
package cart

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/dukahub/storefront/internal/api"
	"github.com/dukahub/storefront/internal/domain"
	"github.com/dukahub/storefront/internal/session"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const basePath = "/sales/cart/"

// Backend is the slice of the API client the store uses.
type Backend interface {
	Do(ctx context.Context, path string, opts api.RequestOptions, out any) error
}

type addItemRequest struct {
	InventoryID int64 `json:"inventory_id"`
	Quantity    int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Store mirrors the server's cart for one storefront session.
//
// Mutations are serialized behind opMu so two in-flight "authoritative"
// responses can never race each other; reads are deduplicated with
// singleflight. Snapshot application is additionally guarded by a
// request sequence, so a reply that was superseded while in flight is
// discarded instead of clobbering newer state.
type Store struct {
	backend Backend
	session session.Store // optional legacy cart mirror

	opMu sync.Mutex // serializes mutating operations
	sfg  singleflight.Group

	mu       sync.RWMutex // guards the fields below
	snapshot *domain.Cart
	loading  bool
	lastErr  error
	issued   uint64
	applied  uint64
	subs     []func(*domain.Cart)
}

func NewStore(backend Backend, sess session.Store) *Store {
	return &Store{backend: backend, session: sess}
}

// Snapshot returns a copy of the current cart, nil before first fetch.
func (s *Store) Snapshot() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
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

// Subscribe registers fn to run after every snapshot change. The
// callback receives its own copy of the cart.
func (s *Store) Subscribe(fn func(*domain.Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Fetch retrieves the authoritative cart and replaces the local
// snapshot wholesale. Concurrent fetches share one round trip. On
// failure the previous snapshot is left untouched.
func (s *Store) Fetch(ctx context.Context) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do("fetch", func() (any, error) {
		seq := s.begin()
		var cart domain.Cart
		if err := s.backend.Do(ctx, basePath, api.RequestOptions{}, &cart); err != nil {
			s.rollback(seq, nil, err)
			return nil, err
		}
		s.commit(seq, &cart)
		return &cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart).Clone(), nil
}

// AddItem adds quantity units of an inventory entry. The backend
// returns the full updated cart, which replaces the snapshot. The
// tentative local change is rolled back verbatim on failure.
func (s *Store) AddItem(ctx context.Context, inventoryID int64, quantity int) error {
	if quantity < 1 {
		return &api.ValidationError{Field: "quantity", Message: "quantity must be a positive integer"}
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.applyOptimistic(func(c *domain.Cart) {
		for i := range c.Items {
			if c.Items[i].InventoryID == inventoryID {
				c.Items[i].Quantity += quantity
				return
			}
		}
		c.Items = append(c.Items, domain.CartItem{InventoryID: inventoryID, Quantity: quantity})
	})

	seq := s.begin()
	var cart domain.Cart
	err := s.backend.Do(ctx, basePath, api.RequestOptions{
		Method: http.MethodPost,
		Body:   addItemRequest{InventoryID: inventoryID, Quantity: quantity},
	}, &cart)
	if err != nil {
		s.rollback(seq, prev, err)
		return err
	}
	s.commit(seq, &cart)
	s.mirror(ctx, &cart)
	return nil
}

// UpdateItem sets the quantity of a line item. Quantity 0 is removal.
func (s *Store) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 0 {
		return &api.ValidationError{Field: "quantity", Message: "quantity must not be negative"}
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, itemID)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.applyOptimistic(func(c *domain.Cart) {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				return
			}
		}
	})

	seq := s.begin()
	var cart domain.Cart
	err := s.backend.Do(ctx, itemPath(itemID), api.RequestOptions{
		Method: http.MethodPut,
		Body:   updateItemRequest{Quantity: quantity},
	}, &cart)
	if err != nil {
		s.rollback(seq, prev, err)
		return err
	}
	s.commit(seq, &cart)
	s.mirror(ctx, &cart)
	return nil
}

// RemoveItem deletes a line item. Removing an item the server no
// longer has is a no-op: the pre-attempt snapshot is restored and no
// error is reported.
func (s *Store) RemoveItem(ctx context.Context, itemID int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.applyOptimistic(func(c *domain.Cart) {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return
			}
		}
	})

	seq := s.begin()
	var cart domain.Cart
	err := s.backend.Do(ctx, itemPath(itemID), api.RequestOptions{Method: http.MethodDelete}, &cart)
	if api.IsNotFound(err) {
		s.rollback(seq, prev, nil)
		return nil
	}
	if err != nil {
		s.rollback(seq, prev, err)
		return err
	}
	s.commit(seq, &cart)
	s.mirror(ctx, &cart)
	return nil
}

// Clear empties the cart. Clearing an already-empty cart succeeds.
func (s *Store) Clear(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.applyOptimistic(func(c *domain.Cart) {
		c.Items = nil
		c.Total = decimal.Zero
	})

	seq := s.begin()
	var cart domain.Cart
	err := s.backend.Do(ctx, basePath, api.RequestOptions{Method: http.MethodDelete}, &cart)
	if err != nil {
		s.rollback(seq, prev, err)
		return err
	}
	s.commit(seq, &cart)
	s.mirror(ctx, &cart)
	return nil
}

func itemPath(itemID int64) string {
	return basePath + "items/" + strconv.FormatInt(itemID, 10) + "/"
}

// begin marks a request in flight and hands back its sequence number.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.loading = true
	s.lastErr = nil
	return s.issued
}

// applyOptimistic runs a tentative change against a copy of the
// snapshot and returns the exact pre-attempt state for rollback. With
// no snapshot yet there is nothing to mutate locally.
func (s *Store) applyOptimistic(change func(*domain.Cart)) *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshot
	if prev == nil {
		return nil
	}
	next := prev.Clone()
	change(next)
	s.snapshot = next
	return prev
}

// commit installs the server's cart unless a later request already
// applied its result.
func (s *Store) commit(seq uint64, cart *domain.Cart) {
	s.mu.Lock()
	if seq < s.applied {
		s.loading = s.issued > s.applied
		s.mu.Unlock()
		return
	}
	s.applied = seq
	s.snapshot = cart.Clone()
	s.loading = false
	subs := make([]func(*domain.Cart), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cart.Clone())
	}
}

func (s *Store) rollback(seq uint64, prev *domain.Cart, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq >= s.applied && prev != nil {
		s.snapshot = prev
	}
	s.loading = false
	s.lastErr = err
}

// mirror best-effort copies the cart into the legacy session mirror.
func (s *Store) mirror(ctx context.Context, cart *domain.Cart) {
	if s.session == nil {
		return
	}
	if err := s.session.SaveCartMirror(ctx, cart); err != nil {
		log.Printf("cart mirror save error: %v", err)
	}
}
