package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"shopee-dashboard/internal/config"
	"shopee-dashboard/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeClock is advanced by hand in rate limiter tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(cfg config.SecurityConfig) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2021, time.March, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(cfg)
	rl.now = clock.Now
	rl.lastSweep = clock.Now()
	return rl, clock
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(mark("outer"), mark("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Errorf("order = %s, want outer,inner,handler", got)
	}
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated request id %q is not a uuid: %v", seen, err)
	}
	if w.Header().Get("X-Request-ID") != seen {
		t.Error("response header should echo the request id")
	}
}

func TestRequestID_Preserved(t *testing.T) {
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("X-Request-ID = %q, want abc", got)
	}
}

func TestRequestRange(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", "all"},
		{"?start=2021-01-01&end=2021-03-31", "2021-01-01..2021-03-31"},
		{"?start=2021-01-01", "2021-01-01.."},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/report"+tt.query, nil)
			if got := requestRange(r); got != tt.want {
				t.Errorf("requestRange() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_RecordsRangeAndStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/summary?start=2022-01-01&end=2022-01-31", nil))

	out := buf.String()
	for _, want := range []string{"request completed", "range=2022-01-01..2022-01-31", "status=422"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output should contain %q, got %s", want, out)
		}
	}
}

func TestTracing_TagsSpan(t *testing.T) {
	var span *observability.Span
	h := Tracing(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span = observability.GetSpan(r.Context())
		w.WriteHeader(http.StatusBadRequest)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/rfm?start=2021-01-01&end=2021-01-31", nil))

	if span == nil {
		t.Fatal("handler should see a span in its context")
	}
	if got := span.Tags["range"]; got != "2021-01-01..2021-01-31" {
		t.Errorf("range tag = %q", got)
	}
	if got := span.Tags["http.status_code"]; got != "400" {
		t.Errorf("status tag = %q, want 400", got)
	}
	if span.Status != observability.SpanStatusError {
		t.Errorf("span status = %s, want %s", span.Status, observability.SpanStatusError)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("body should carry INTERNAL_ERROR, got %s", w.Body.String())
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl, _ := newTestLimiter(config.SecurityConfig{EnableRateLimit: false, RateLimitRPS: 1, RateLimitBurst: 1})

	for range 5 {
		if !rl.Allow("10.0.0.1") {
			t.Fatal("disabled limiter should allow every request")
		}
	}
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl, _ := newTestLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})

	if !rl.Allow("10.0.0.1") {
		t.Error("first request should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second immediate request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients have their own budget")
	}
}

func TestRateLimiter_ActiveClientKeepsLimiter(t *testing.T) {
	rl, clock := newTestLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")
	original := rl.clients["10.0.0.1"].limiter

	// 10.0.0.1 keeps calling every 30s well past the idle TTL;
	// 10.0.0.2 goes quiet.
	for elapsed := time.Duration(0); elapsed < 2*limiterIdleTTL; elapsed += 30 * time.Second {
		clock.Advance(30 * time.Second)
		rl.Allow("10.0.0.1")
	}

	active, ok := rl.clients["10.0.0.1"]
	if !ok {
		t.Fatal("active client should not be evicted")
	}
	if active.limiter != original {
		t.Error("active client should keep its original limiter")
	}
	if _, ok := rl.clients["10.0.0.2"]; ok {
		t.Error("idle client should be evicted after the TTL")
	}
}

func TestRateLimiter_NoFreshBurstForActiveClient(t *testing.T) {
	// One token per ten minutes: within that window a second allowed request
	// can only come from a limiter being reset.
	rl, clock := newTestLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})
	rl.clients["10.0.0.1"] = &clientLimiter{
		limiter:  rate.NewLimiter(rate.Every(10*time.Minute), 1),
		lastSeen: clock.Now(),
	}

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	allowed := 0
	for range 12 {
		clock.Advance(30 * time.Second)
		if rl.Allow("10.0.0.1") {
			allowed++
		}
	}
	if allowed != 0 {
		t.Errorf("allowed %d requests within one refill interval, want 0", allowed)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})
	h := RateLimit(rl, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(config.SecurityConfig{AllowedOrigins: []string{"https://shop.example"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("preflight should not reach the handler")
		}))

	r := httptest.NewRequest(http.MethodOptions, "/api/report", nil)
	r.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestCORS_UnknownOrigin(t *testing.T) {
	h := CORS(config.SecurityConfig{AllowedOrigins: []string{"https://shop.example"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest("GET", "/api/report", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want empty", got)
	}
}

func TestTrustedProxy_StripsUntrustedHeaders(t *testing.T) {
	var forwarded string
	h := TrustedProxy(config.SecurityConfig{TrustedProxies: []string{"127.0.0.1"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			forwarded = r.Header.Get("X-Forwarded-For")
		}))

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.4:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if forwarded != "" {
		t.Errorf("X-Forwarded-For = %q, want stripped", forwarded)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.7" {
		t.Errorf("clientIP() = %q, want 203.0.113.7", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.4:5000"
	if got := clientIP(r); got != "198.51.100.4" {
		t.Errorf("clientIP() = %q, want 198.51.100.4", got)
	}
}
