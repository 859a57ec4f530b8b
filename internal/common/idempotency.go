package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Idem rejects replays of write requests carrying the same
// Idempotency-Key header. A flaky till connection retries the checkout
// POST; the retry must not ring up the sale twice. Keys are held in
// Redis for TTL, long enough to outlive any client retry loop.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

// pos:idem: namespaces the keys away from the cache and limiter entries
// sharing the same Redis.
func idemKey(header string) string {
	sum := sha256.Sum256([]byte(header))
	return "pos:idem:" + hex.EncodeToString(sum[:])
}

// Middleware claims the key before the handler runs. Requests without
// the header pass through untouched.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := idemKey(header)
		claimed, err := i.R.SetNX(r.Context(), key, "claimed", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !claimed {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}
		defer func() {
			// keep the claim alive even if the handler panics
			_ = i.R.Expire(context.Background(), key, i.TTL).Err()
		}()
		next.ServeHTTP(w, r)
	})
}
