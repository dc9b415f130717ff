package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"phlock/infrastructure/observability"
)

// statusRecorder wraps http.ResponseWriter to capture the status code for
// logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.status = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.status = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// requestLogger logs one line per request and records request metrics keyed
// by the chi route pattern, so parameterized paths collapse into one series
// per route.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		entry := log.WithFields(log.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": float64(duration.Nanoseconds()) / float64(time.Millisecond),
		})
		switch {
		case rec.status >= 500:
			entry.Error("HTTP request failed")
		case rec.status >= 400:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request served")
		}

		if metrics := observability.GetMetrics(); metrics != nil {
			metrics.RecordHTTPRequest(route, rec.status, duration)
		}
	})
}

// clientLimiter pairs a token bucket with its last use so idle clients can
// be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter applies a per-client token bucket across the API. Clients are
// keyed by remote host, which is the caller service's address when the
// engine runs behind other services.
type rateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.RLock()
	cl, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		rl.mu.Lock()
		cl.lastSeen = time.Now()
		rl.mu.Unlock()
		return cl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// Re-check under the write lock: another request may have created the
	// limiter between the two lock acquisitions.
	if cl, ok := rl.clients[key]; ok {
		cl.lastSeen = time.Now()
		return cl.limiter
	}
	cl = &clientLimiter{
		limiter:  rate.NewLimiter(rl.rps, rl.burst),
		lastSeen: time.Now(),
	}
	rl.clients[key] = cl
	return cl.limiter
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			rl.mu.Lock()
			for key, cl := range rl.clients {
				if cl.lastSeen.Before(cutoff) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// middleware rejects requests over the client's bucket with a 429 and a
// Retry-After hint derived from the refill rate.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiterFor(clientKey(r)).Allow() {
			retryAfter := 1
			if rl.rps > 0 {
				if secs := int(math.Ceil(1 / float64(rl.rps))); secs > retryAfter {
					retryAfter = secs
				}
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RealIP middleware rewrites RemoteAddr to a bare IP.
		return r.RemoteAddr
	}
	return host
}
