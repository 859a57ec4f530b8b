package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestIdem(t *testing.T) Idem {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Idem{R: client, TTL: time.Minute}
}

func TestIdempotencyDuplicateRejected(t *testing.T) {
	idem := newTestIdem(t)
	var hits int
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	first.Header.Set("Idempotency-Key", "sale-001")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusCreated, rec.Code)

	replay := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	replay.Header.Set("Idempotency-Key", "sale-001")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, replay)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "IDEMPOTENT_REPLAY")

	require.Equal(t, 1, hits)
}

func TestIdempotencyDistinctKeysPass(t *testing.T) {
	idem := newTestIdem(t)
	var hits int
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	for _, key := range []string{"sale-001", "sale-002"} {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.Header.Set("Idempotency-Key", key)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	require.Equal(t, 2, hits)
}

func TestIdempotencySkippedWithoutHeader(t *testing.T) {
	idem := newTestIdem(t)
	var hits int
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/checkout", nil))
	}
	require.Equal(t, 2, hits)
}
