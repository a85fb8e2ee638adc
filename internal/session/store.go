// Package session owns all session-scoped client state: the bearer
// credentials, the anonymous guest identity and the legacy local cart
// mirror. Every component reads through here instead of touching
// storage directly, and logout clears the whole set atomically.
package session

import (
	"context"
	"errors"

	"github.com/dukahub/storefront/internal/domain"
)

// Storage key names, fixed by the legacy storefront contract.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyIsAdmin      = "is_admin"
	KeyGuestID      = "guest_id"
	KeyCartMirror   = "cart"
)

// ErrNotFound is returned when a requested key holds no value.
var ErrNotFound = errors.New("session key not found")

// Credentials is the bearer credential set written by the login flow
// and cleared, as one unit, by logout.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IsAdmin      bool   `json:"is_admin"`
}

type Store interface {
	// Credentials returns the current credential set; a zero value with
	// no error means the session is unauthenticated.
	Credentials(ctx context.Context) (Credentials, error)
	SetCredentials(ctx context.Context, creds Credentials) error

	// Token is the access token, "" when unauthenticated. Satisfies
	// api.TokenSource.
	Token(ctx context.Context) (string, error)

	// GuestID returns the anonymous guest identifier, creating one on
	// first use.
	GuestID(ctx context.Context) (string, error)

	// SaveCartMirror / LoadCartMirror maintain the legacy local cart
	// snapshot. Load returns ErrNotFound when no mirror exists.
	SaveCartMirror(ctx context.Context, cart *domain.Cart) error
	LoadCartMirror(ctx context.Context) (*domain.Cart, error)

	// Clear wipes every session key in one atomic step; no request may
	// observe a partially cleared credential set.
	Clear(ctx context.Context) error
}
