package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (m *memStore) Claim(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func newHandler(store Store, status *int) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Middleware(store, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(*status)
	}))
}

func post(h http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(Header, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	status := http.StatusCreated

	t.Run("no header passes through", func(t *testing.T) {
		h := newHandler(&memStore{keys: map[string]bool{}}, &status)
		assert.Equal(t, http.StatusCreated, post(h, "/carts", "").Code)
		assert.Equal(t, http.StatusCreated, post(h, "/carts", "").Code)
	})

	t.Run("replay is rejected", func(t *testing.T) {
		h := newHandler(&memStore{keys: map[string]bool{}}, &status)
		assert.Equal(t, http.StatusCreated, post(h, "/carts", "k1").Code)

		rec := post(h, "/carts", "k1")
		require.Equal(t, http.StatusConflict, rec.Code)
		var body httpx.ErrorRecord
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "CONFLICT", body.Code)
		assert.Equal(t, "/carts", body.Path)
	})

	t.Run("safe methods are not claimed", func(t *testing.T) {
		store := &memStore{keys: map[string]bool{}}
		h := newHandler(store, &status)
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/carts", nil)
			req.Header.Set(Header, "k1")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusCreated, rec.Code)
		}
		assert.Empty(t, store.keys)
	})

	t.Run("keys are scoped by route", func(t *testing.T) {
		h := newHandler(&memStore{keys: map[string]bool{}}, &status)
		assert.Equal(t, http.StatusCreated, post(h, "/carts", "k1").Code)
		assert.Equal(t, http.StatusCreated, post(h, "/orders", "k1").Code)
	})

	t.Run("server error releases key", func(t *testing.T) {
		failing := http.StatusInternalServerError
		store := &memStore{keys: map[string]bool{}}
		h := newHandler(store, &failing)
		assert.Equal(t, http.StatusInternalServerError, post(h, "/carts", "k2").Code)
		assert.Equal(t, http.StatusInternalServerError, post(h, "/carts", "k2").Code)
		assert.Empty(t, store.keys)
	})

	t.Run("store failure does not block", func(t *testing.T) {
		h := newHandler(&memStore{keys: map[string]bool{}, err: errors.New("down")}, &status)
		assert.Equal(t, http.StatusCreated, post(h, "/carts", "k3").Code)
		assert.Equal(t, http.StatusCreated, post(h, "/carts", "k3").Code)
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	ctx := context.Background()
	store := NewRedisStore(client, time.Minute)
	key := "test-" + uuid.NewString()

	ok, err := store.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, key))
	ok, err = store.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	_ = store.Release(ctx, key)
}
