package chatd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitWindow    = time.Minute
	rateLimitKeyPrefix = "rate_limit:"
)

// Limiter records a request for a client and reports whether it fits the
// current window.
type Limiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// MemoryLimiter is a sliding-window limiter for single-process deployments
// and tests.
type MemoryLimiter struct {
	mu        sync.Mutex
	perMinute int
	hits      map[string][]time.Time
	now       func() time.Time
}

func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{
		perMinute: perMinute,
		hits:      make(map[string][]time.Time),
		now:       time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	windowStart := now.Add(-rateLimitWindow)
	kept := l.hits[clientID][:0]
	for _, t := range l.hits[clientID] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.perMinute {
		l.hits[clientID] = kept
		return false, nil
	}
	l.hits[clientID] = append(kept, now)
	return true, nil
}

// RedisLimiter shares the window across processes: timestamps are LPUSHed
// to rate_limit:<client> and the key expires with the window.
type RedisLimiter struct {
	client    *redis.Client
	perMinute int
}

func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{client: client, perMinute: perMinute}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	key := rateLimitKeyPrefix + clientID
	entries, err := l.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return false, &StorageError{Op: "rate limit", Err: err}
	}
	windowStart := time.Now().Add(-rateLimitWindow).UnixMilli()
	count := 0
	for _, entry := range entries {
		if ts, err := strconv.ParseInt(entry, 10, 64); err == nil && ts > windowStart {
			count++
		}
	}
	if count >= l.perMinute {
		return false, nil
	}
	if err := l.client.LPush(ctx, key, time.Now().UnixMilli()).Err(); err != nil {
		return false, &StorageError{Op: "rate limit", Err: err}
	}
	if err := l.client.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
		return false, &StorageError{Op: "rate limit", Err: err}
	}
	return true, nil
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit enforces the per-client budget. Limiter failures fail open:
// chat availability beats limiter precision.
func RateLimit(limiter Limiter, log glog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			ok, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":   "Too many requests",
					"message": "Please try again in a minute",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS applies the permissive development posture: any origin, the full
// method set, preflight short-circuited.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLog records one line per request.
func RequestLog(log glog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"client", clientIP(r),
			)
		})
	}
}

// Recover turns handler panics into 500 envelopes instead of dropped
// connections.
func Recover(log glog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error("handler panic", "path", r.URL.Path, "panic", v)
					writeError(w, fmt.Errorf("panic: %v", v))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
