package chatd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(2)
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should fit the window", i+1)
	}

	ok, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Other clients keep their own budget.
	ok, err = limiter.Allow(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	// Once the window slides past the first hits the budget frees up.
	clock = clock.Add(rateLimitWindow + time.Second)
	ok, err = limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:4711"
	assert.Equal(t, "192.0.2.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.9 , 198.51.100.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

type limiterFunc func(ctx context.Context, clientID string) (bool, error)

func (f limiterFunc) Allow(ctx context.Context, clientID string) (bool, error) {
	return f(ctx, clientID)
}

func TestRateLimitFailsOpen(t *testing.T) {
	broken := limiterFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("redis gone")
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RateLimit(broken, quietLogger())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitRejection(t *testing.T) {
	closed := limiterFunc(func(context.Context, string) (bool, error) {
		return false, nil
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	rec := httptest.NewRecorder()
	RateLimit(closed, quietLogger())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]string
	decodeJSONBody(t, rec, &body)
	assert.Equal(t, "Too many requests", body["error"])
	assert.Equal(t, "Please try again in a minute", body["message"])
}

func TestCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})

	rec := httptest.NewRecorder()
	CORS(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestCORSPassthroughKeepsHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	CORS(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverWritesEnvelope(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recover(quietLogger())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var env errorEnvelope
	decodeJSONBody(t, rec, &env)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "internal_error", env.ErrorType)
	assert.Equal(t, "An unexpected error occurred", env.Message)
}
