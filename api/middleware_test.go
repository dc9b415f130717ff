package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1, 2)
	defer rl.stop()
	handler := rl.middleware(okHandler())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/x/roster", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send().Code)
	require.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_KeysClientsSeparately(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1, 1)
	defer rl.stop()
	handler := rl.middleware(okHandler())

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/x/roster", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send("10.0.0.1:4000").Code)
	require.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:4001").Code, "same host, different port shares the bucket")
	assert.Equal(t, http.StatusOK, send("10.0.0.2:4000").Code)
}

func TestRateLimiter_RetryAfterScalesWithRate(t *testing.T) {
	t.Parallel()

	// A fifth of a request per second refills one token every five
	// seconds.
	rl := newRateLimiter(0.2, 1)
	defer rl.stop()
	handler := rl.middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/users/x/roster", nil)
	req.RemoteAddr = "10.0.0.9:4000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
}

func TestStatusRecorder_CapturesImplicitOK(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	_, err := rec.Write([]byte("body"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.status)

	// A later explicit WriteHeader must not overwrite the recorded status.
	explicit := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	explicit.WriteHeader(http.StatusTeapot)
	explicit.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, explicit.status)
}
