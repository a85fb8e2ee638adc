package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/dukahub/storefront/internal/cart"
	"github.com/dukahub/storefront/internal/checkout"
	"github.com/dukahub/storefront/internal/domain"
	"github.com/dukahub/storefront/internal/pos"
	"github.com/dukahub/storefront/internal/session"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the storefront session identity.
	SessionCookie = "storefront_session"

	// CleanupInterval is how often the background eviction runs
	CleanupInterval = 30 * time.Second
)

// Session bundles the per-session stores: one API client identity, one
// cart, one POS list, one payment attempt at a time.
type Session struct {
	ID       string
	Store    session.Store
	Cart     *cart.Store
	POS      *pos.Store
	Checkout *checkout.Coordinator
}

// Factory builds the store bundle for a new session id.
type Factory func(sessionID string) (*Session, error)

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry tracks live sessions and evicts the ones idle past the TTL.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
	factory Factory
	ttl     time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	r := &Registry{
		entries:     make(map[string]*sessionEntry),
		factory:     factory,
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *Registry) evictIdle() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
		}
	}
}

// Get returns the session for id, creating it on first use.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if ok {
		r.touch(id)
		return e.session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.lastSeen = time.Now()
		return e.session, nil
	}
	s, err := r.factory(id)
	if err != nil {
		return nil, err
	}
	r.entries[id] = &sessionEntry{session: s, lastSeen: time.Now()}
	return s, nil
}

func (r *Registry) touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.lastSeen = time.Now()
	}
}

// Drop removes a session, used on logout.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// ApplyPaymentStatus routes a gateway-published payment status to the
// session holding that payment attempt. Satisfies checkout.StatusApplier.
func (r *Registry) ApplyPaymentStatus(paymentID int64, status domain.PaymentStatus) bool {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.entries))
	for _, e := range r.entries {
		sessions = append(sessions, e.session)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if s.Checkout.ApplyServerStatus(paymentID, status) {
			return true
		}
	}
	return false
}

func (r *Registry) Close() {
	close(r.stopCleanup)
	r.wg.Wait()
}

// sessionID reads the session cookie, minting a new identity (and
// setting the cookie) when the request has none.
func sessionID(w http.ResponseWriter, req *http.Request) string {
	if c, err := req.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
