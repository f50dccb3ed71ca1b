// CLAUDE:SUMMARY Per-IP fixed-window rate limiter for the render API, in-memory with periodic bucket GC.
package shield

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// Limiter is a per-IP fixed-window rate limiter. domfill renders
// caller-supplied HTML and data, so the public API gets a cheap brake
// against a single client hammering /api/render. Limits are static
// configuration, not per-endpoint rules: the API surface is small enough
// for one number.
type Limiter struct {
	max     int
	window  time.Duration
	exclude []string // path prefixes that bypass limiting (e.g. /health)
	buckets sync.Map // ip -> *bucket
}

// NewLimiter creates a limiter allowing max requests per window per client
// IP. Paths starting with any exclude prefix bypass the limiter.
func NewLimiter(max int, window time.Duration, exclude ...string) *Limiter {
	if max <= 0 {
		max = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{max: max, window: window, exclude: exclude}
}

// StartGC evicts expired buckets every few windows until ctx is cancelled.
// Without it, every client IP ever seen would stay resident.
func (l *Limiter) StartGC(ctx context.Context) {
	go func() {
		t := time.NewTicker(5 * l.window)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				now := time.Now()
				l.buckets.Range(func(key, value any) bool {
					if b := value.(*bucket); now.After(b.resetAt) {
						l.buckets.Delete(key)
					}
					return true
				})
			}
		}
	}()
}

func (l *Limiter) allow(ip string) bool {
	now := time.Now()
	val, loaded := l.buckets.LoadOrStore(ip, &bucket{count: 1, resetAt: now.Add(l.window)})
	if !loaded {
		return true
	}
	b := val.(*bucket)
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.After(b.resetAt) {
		b.count = 1
		b.resetAt = now.Add(l.window)
		return true
	}
	b.count++
	return b.count <= l.max
}

// Middleware enforces the limit, answering 429 with a JSON error and a
// Retry-After hint when a client exceeds it.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range l.exclude {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		ip := ExtractIP(r)
		if l.allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		slog.Warn("ratelimit: request blocked", "ip", ip, "path", r.URL.Path)
		w.Header().Set("Retry-After", retryAfter(l.window))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
	})
}

func retryAfter(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// ExtractIP returns the client IP from X-Forwarded-For or RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
