package shield

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/domfill/kit"
)

func stackRouter(maxBody int64) chi.Router {
	r := chi.NewRouter()
	for _, mw := range APIStack(maxBody) {
		r.Use(mw)
	}
	return r
}

func TestAPIStackHeaders(t *testing.T) {
	// WHAT: every response carries the security headers and a request ID.
	r := stackRouter(1 << 20)
	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	checks := map[string]string{
		"X-Frame-Options":         "DENY",
		"X-Content-Type-Options":  "nosniff",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}
	for header, want := range checks {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s: got %q, want %q", header, got, want)
		}
	}

	id := w.Header().Get("X-Request-ID")
	if !strings.HasPrefix(id, "req_") || len(id) != len("req_")+8 {
		t.Errorf("X-Request-ID = %q, want req_ prefix + 8 chars", id)
	}
}

func TestRequestIDInContext(t *testing.T) {
	var seen string
	r := stackRouter(1 << 20)
	r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
		seen = kit.GetRequestID(req.Context())
		if GetLogger(req.Context()) == nil {
			t.Error("per-request logger missing from context")
		}
		if tr := kit.GetTransport(req.Context()); tr != "http" {
			t.Errorf("transport = %q, want http", tr)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if seen == "" {
		t.Fatal("request ID missing from context")
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("header ID %q != context ID %q", got, seen)
	}
}

func TestRequestIDHonorsCallerID(t *testing.T) {
	r := stackRouter(1 << 20)
	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "req_caller01")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req_caller01" {
		t.Errorf("X-Request-ID = %q, want the caller's ID back", got)
	}
}

func TestHeadToGet(t *testing.T) {
	r := stackRouter(1 << 20)
	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("HEAD", "/test", nil))
	if w.Code != 200 {
		t.Errorf("HEAD status = %d, want 200", w.Code)
	}
}

func TestMaxJSONBody(t *testing.T) {
	r := stackRouter(64)
	r.Post("/test", func(w http.ResponseWriter, req *http.Request) {
		if _, err := io.ReadAll(req.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(200)
	})

	big := bytes.Repeat([]byte("x"), 256)

	t.Run("JSON over limit is cut off", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", bytes.NewReader(big))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", w.Code)
		}
	})

	t.Run("other content types pass through", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", bytes.NewReader(big))
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(2, time.Minute, "/health")
	r := chi.NewRouter()
	r.Use(l.Middleware)
	r.Get("/api/render", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if got := get("/api/render").Code; got != 200 {
		t.Fatalf("first request = %d, want 200", got)
	}
	if got := get("/api/render").Code; got != 200 {
		t.Fatalf("second request = %d, want 200", got)
	}

	blocked := get("/api/render")
	if blocked.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", blocked.Code)
	}
	if blocked.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing on 429")
	}
	var body map[string]string
	if err := json.NewDecoder(blocked.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Errorf("429 body = %v, %v; want a JSON error", body, err)
	}

	// Excluded prefix stays open.
	if got := get("/health").Code; got != 200 {
		t.Errorf("excluded path = %d, want 200", got)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	l := NewLimiter(1, 30*time.Millisecond)
	r := chi.NewRouter()
	r.Use(l.Middleware)
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })

	get := func() int {
		req := httptest.NewRequest("GET", "/x", nil)
		req.RemoteAddr = "203.0.113.8:4321"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := get(); got != 200 {
		t.Fatalf("first = %d, want 200", got)
	}
	if got := get(); got != http.StatusTooManyRequests {
		t.Fatalf("second = %d, want 429", got)
	}
	time.Sleep(50 * time.Millisecond)
	if got := get(); got != 200 {
		t.Fatalf("after window = %d, want 200", got)
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		remote string
		xff    string
		want   string
	}{
		{"192.0.2.1:5000", "", "192.0.2.1"},
		{"192.0.2.1:5000", "203.0.113.9", "203.0.113.9"},
		{"192.0.2.1:5000", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"badaddr", "", "badaddr"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remote
		if tt.xff != "" {
			req.Header.Set("X-Forwarded-For", tt.xff)
		}
		if got := ExtractIP(req); got != tt.want {
			t.Errorf("ExtractIP(remote=%q, xff=%q) = %q, want %q", tt.remote, tt.xff, got, tt.want)
		}
	}
}
