package session

import (
	"context"
	"testing"

	"github.com/dukahub/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Credentials(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	creds, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)

	require.NoError(t, s.SetCredentials(ctx, Credentials{
		AccessToken:  "tok",
		RefreshToken: "ref",
		IsAdmin:      true,
	}))

	creds, err = s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.AccessToken)
	assert.Equal(t, "ref", creds.RefreshToken)
	assert.True(t, creds.IsAdmin)

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestMemoryStore_GuestIDStable(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.GuestID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := s.GuestID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMemoryStore_CartMirror(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.LoadCartMirror(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	cart := &domain.Cart{ID: 3, Items: []domain.CartItem{{ID: 1, InventoryID: 9, Quantity: 2}}}
	require.NoError(t, s.SaveCartMirror(ctx, cart))

	loaded, err := s.LoadCartMirror(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.ID)

	// The mirror is a copy, not a shared pointer.
	loaded.Items[0].Quantity = 99
	again, err := s.LoadCartMirror(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)
}

func TestMemoryStore_ClearWipesEverything(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetCredentials(ctx, Credentials{AccessToken: "tok", IsAdmin: true}))
	guest, err := s.GuestID(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SaveCartMirror(ctx, &domain.Cart{ID: 1}))

	require.NoError(t, s.Clear(ctx))

	creds, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
	assert.False(t, creds.IsAdmin)

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = s.LoadCartMirror(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	newGuest, err := s.GuestID(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, guest, newGuest, "a cleared session starts a fresh guest identity")
}
