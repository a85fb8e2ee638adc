package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dukahub/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, "sess-1")

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestRedisStore_CredentialsRoundTrip(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	creds, err := store.Credentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)

	require.NoError(t, store.SetCredentials(ctx, Credentials{
		AccessToken:  "tok",
		RefreshToken: "ref",
		IsAdmin:      true,
	}))

	creds, err = store.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.AccessToken)
	assert.Equal(t, "ref", creds.RefreshToken)
	assert.True(t, creds.IsAdmin)

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestRedisStore_GuestIDStable(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	first, err := store.GuestID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := store.GuestID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRedisStore_CartMirror(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.LoadCartMirror(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	cart := &domain.Cart{ID: 5, Items: []domain.CartItem{{ID: 1, InventoryID: 2, Quantity: 4}}}
	require.NoError(t, store.SaveCartMirror(ctx, cart))

	loaded, err := store.LoadCartMirror(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), loaded.ID)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 4, loaded.Items[0].Quantity)
}

func TestRedisStore_ClearDeletesAllKeys(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SetCredentials(ctx, Credentials{AccessToken: "tok", RefreshToken: "ref", IsAdmin: true}))
	_, err := store.GuestID(ctx)
	require.NoError(t, err)
	require.NoError(t, store.SaveCartMirror(ctx, &domain.Cart{ID: 1}))

	require.NoError(t, store.Clear(ctx))

	for _, name := range []string{KeyAccessToken, KeyRefreshToken, KeyIsAdmin, KeyGuestID, KeyCartMirror} {
		assert.False(t, mr.Exists(store.key(name)), "key %s must be gone after clear", name)
	}

	creds, err := store.Credentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
	assert.False(t, creds.IsAdmin)
}

func TestRedisStore_SessionsAreIsolated(t *testing.T) {
	_, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	a := NewRedisStore(client, "sess-a")
	b := NewRedisStore(client, "sess-b")

	require.NoError(t, a.SetCredentials(ctx, Credentials{AccessToken: "tok-a"}))

	token, err := b.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}
