package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/DioGolang/GoTrack/pkg/logger"
)

const IdempotencyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency rejects a repeated request carrying an Idempotency-Key that is already in
// flight or already succeeded. A failed request releases its key so the client can retry.
// Requests without the header pass through.
func Idempotency(log logger.Logger, store IdempotencyStore, scope string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			claimKey := scope + ":" + key

			claimed, err := store.Claim(ctx, claimKey, ttl)
			if err != nil {
				log.Error(ctx, "Idempotency store unavailable", logger.WithError(err))
				http.Error(w, "idempotency store unavailable", http.StatusServiceUnavailable)
				return
			}
			if !claimed {
				log.Info(ctx, "Duplicate request dropped by idempotency guard",
					logger.String("scope", scope),
					logger.String("key", key),
				)
				http.Error(w, "duplicate request", http.StatusConflict)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := store.Release(context.WithoutCancel(ctx), claimKey); err != nil {
					log.Error(ctx, "Failed to release idempotency key",
						logger.String("key", claimKey),
						logger.WithError(err),
					)
				}
			}
		})
	}
}
