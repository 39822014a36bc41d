// Package idempotency rejects replays of mutating requests that carry the
// same Idempotency-Key header.
package idempotency

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	Header     = "Idempotency-Key"
	keyPrefix  = "idem:"
	DefaultTTL = 24 * time.Hour
)

// Store claims keys. Claim reports false when the key is already held.
type Store interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

// Key scopes a client key to the route it was sent to.
func Key(r *http.Request, clientKey string) string {
	return r.Method + " " + r.URL.Path + " " + clientKey
}

// Middleware claims the Idempotency-Key of every mutating request that sends
// one. Safe methods and requests without the header pass through. A key that fails with a 5xx is
// released so the client can retry. Store errors are logged and the request
// proceeds unguarded.
func Middleware(store Store, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(Header)
			if clientKey == "" || safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := Key(r, clientKey)
			ok, err := store.Claim(ctx, key)
			if err != nil {
				log.WarnContext(ctx, "idempotency store unavailable", slog.Any("err", err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				httpx.WriteError(w, r, log, apperr.Conflict("Request with Idempotency-Key '%s' was already processed", clientKey))
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusInternalServerError {
				if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
					log.WarnContext(ctx, "release idempotency key failed", slog.Any("err", err))
				}
			}
		})
	}
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}
