package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dukahub/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on redis, namespaced by the storefront
// session id so gateway replicas share session state.
type RedisStore struct {
	client    *redis.Client
	sessionID string
	baseTTL   time.Duration
}

func NewRedisStore(client *redis.Client, sessionID string) *RedisStore {
	return &RedisStore{
		client:    client,
		sessionID: sessionID,
		baseTTL:   24 * time.Hour,
	}
}

func (s *RedisStore) key(name string) string {
	return fmt.Sprintf("session:%s:%s", s.sessionID, name)
}

// ttl adds jitter so a burst of sessions does not expire at once.
func (s *RedisStore) ttl() time.Duration {
	return s.baseTTL + time.Duration(rand.Intn(300))*time.Second
}

func (s *RedisStore) Credentials(ctx context.Context) (Credentials, error) {
	vals, err := s.client.MGet(ctx, s.key(KeyAccessToken), s.key(KeyRefreshToken), s.key(KeyIsAdmin)).Result()
	if err != nil {
		return Credentials{}, fmt.Errorf("redis mget failed: %w", err)
	}
	var creds Credentials
	if v, ok := vals[0].(string); ok {
		creds.AccessToken = v
	}
	if v, ok := vals[1].(string); ok {
		creds.RefreshToken = v
	}
	if v, ok := vals[2].(string); ok {
		creds.IsAdmin = v == "1"
	}
	return creds, nil
}

// SetCredentials writes all three credential keys inside MULTI/EXEC so
// another request never reads a half-written set.
func (s *RedisStore) SetCredentials(ctx context.Context, creds Credentials) error {
	admin := "0"
	if creds.IsAdmin {
		admin = "1"
	}
	ttl := s.ttl()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(KeyAccessToken), creds.AccessToken, ttl)
	pipe.Set(ctx, s.key(KeyRefreshToken), creds.RefreshToken, ttl)
	pipe.Set(ctx, s.key(KeyIsAdmin), admin, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	creds, err := s.Credentials(ctx)
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

func (s *RedisStore) GuestID(ctx context.Context) (string, error) {
	key := s.key(KeyGuestID)
	id, err := s.client.Get(ctx, key).Result()
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	id = uuid.NewString()
	// SetNX so two concurrent first reads agree on one identity.
	ok, err := s.client.SetNX(ctx, key, id, s.ttl()).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx failed: %w", err)
	}
	if !ok {
		return s.client.Get(ctx, key).Result()
	}
	return id, nil
}

func (s *RedisStore) SaveCartMirror(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, s.key(KeyCartMirror), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadCartMirror(ctx context.Context) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, s.key(KeyCartMirror)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// Clear deletes every session key in a single DEL, which redis applies
// atomically.
func (s *RedisStore) Clear(ctx context.Context) error {
	keys := []string{
		s.key(KeyAccessToken),
		s.key(KeyRefreshToken),
		s.key(KeyIsAdmin),
		s.key(KeyGuestID),
		s.key(KeyCartMirror),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
