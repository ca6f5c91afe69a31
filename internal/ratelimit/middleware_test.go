package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mitti-app/backend-regi/internal/ratelimit"
)

func TestMiddlewareEnforcesLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	handler := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: client, Prefix: "rl:test"},
		Config: ratelimit.Config{
			Key:    ratelimit.KeyByIP,
			Window: time.Minute,
			Max:    2,
		},
	}
	next := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calc/transaction", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		next.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calc/transaction", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	next.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different client is unaffected.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/calc/transaction", nil)
	req.RemoteAddr = "10.0.0.2:4000"
	next.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
