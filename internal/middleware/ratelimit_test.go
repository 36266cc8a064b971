package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func testRateLimiterConfig(generalBurst, writeBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    generalBurst,
		WriteRate:       0.5,
		WriteBurst:      writeBurst,
		CleanupInterval: 1 * time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// requestFrom は指定した接続元アドレスのリクエストを生成する。
func requestFrom(method, remoteAddr string) *http.Request {
	req := httptest.NewRequest(method, "/worker", nil)
	req.RemoteAddr = remoteAddr
	return req
}

// --- GeneralMiddleware のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(5, 10))
	defer rl.Stop()

	handlerCallCount := 0
	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom(http.MethodGet, "192.0.2.1:1234"))

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfter(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(2, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom(http.MethodGet, "192.0.2.1:1234"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom(http.MethodGet, "192.0.2.1:1234"))

	resp := w.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}

	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After is not an integer: %q", resp.Header.Get("Retry-After"))
	}
	if retryAfter != 1 {
		t.Errorf("Retry-After = %d, want 1", retryAfter)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q, want %q", body.Code, "RATE_LIMIT_EXCEEDED")
	}
	if body.Category != "system" {
		t.Errorf("category = %q, want %q", body.Category, "system")
	}
}

func TestRateLimitMiddleware_IsolatesClients(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, requestFrom(http.MethodGet, "192.0.2.1:1111"))
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, requestFrom(http.MethodGet, "192.0.2.2:1111"))

	if w1.Result().StatusCode != http.StatusOK || w2.Result().StatusCode != http.StatusOK {
		t.Errorf("statuses = %d, %d, want 200, 200", w1.Result().StatusCode, w2.Result().StatusCode)
	}

	// 同じIPは送信元ポートが違っても同一クライアントとして扱う
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, requestFrom(http.MethodGet, "192.0.2.1:2222"))
	if w3.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w3.Result().StatusCode, http.StatusTooManyRequests)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", got)
	}
}

// --- WriteMiddleware のテスト ---

func TestWriteRateLimit_IgnoresReadMethods(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(100, 1))
	defer rl.Stop()

	handler := rl.WriteMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom(http.MethodGet, "192.0.2.1:1234"))
		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("GET %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if got := rl.WriteLimiterCount(); got != 0 {
		t.Errorf("WriteLimiterCount = %d, want 0 for read-only traffic", got)
	}
}

func TestWriteRateLimit_LimitsMutatingMethods(t *testing.T) {
	methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			rl := NewRateLimiter(testRateLimiterConfig(100, 1))
			defer rl.Stop()

			handler := rl.WriteMiddleware()(okHandler())

			w1 := httptest.NewRecorder()
			handler.ServeHTTP(w1, requestFrom(method, "192.0.2.1:1234"))
			if w1.Result().StatusCode != http.StatusOK {
				t.Fatalf("first %s: status = %d, want %d", method, w1.Result().StatusCode, http.StatusOK)
			}

			w2 := httptest.NewRecorder()
			handler.ServeHTTP(w2, requestFrom(method, "192.0.2.1:1234"))
			if w2.Result().StatusCode != http.StatusTooManyRequests {
				t.Errorf("second %s: status = %d, want %d", method, w2.Result().StatusCode, http.StatusTooManyRequests)
			}
			if got := w2.Result().Header.Get("Retry-After"); got != "2" {
				t.Errorf("Retry-After = %q, want %q", got, "2")
			}
		})
	}
}

func TestWriteRateLimit_IndependentFromGeneralLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(3, 1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(rl.WriteMiddleware()(okHandler()))

	// 更新系の上限を使い切っても参照系は通る
	handler.ServeHTTP(httptest.NewRecorder(), requestFrom(http.MethodPost, "192.0.2.1:1234"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom(http.MethodGet, "192.0.2.1:1234"))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("GET after write exhaustion: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

// --- RealIPとの組み合わせ ---

func TestRateLimitMiddleware_BehindRealIP_UsesForwardedClient(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 10))
	defer rl.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(rl.GeneralMiddleware())
	r.Get("/worker", okHandler().ServeHTTP)

	send := func(forwardedFor string) int {
		req := requestFrom(http.MethodGet, "10.0.0.1:1234")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	if got := send("198.51.100.1"); got != http.StatusOK {
		t.Errorf("client A first: status = %d, want 200", got)
	}
	if got := send("198.51.100.2"); got != http.StatusOK {
		t.Errorf("client B first: status = %d, want 200 (同じプロキシ経由でも別クライアント)", got)
	}
	if got := send("198.51.100.1"); got != http.StatusTooManyRequests {
		t.Errorf("client A second: status = %d, want 429", got)
	}
}

// --- クリーンアップのテスト ---

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	cfg := testRateLimiterConfig(5, 5)
	cfg.CleanupInterval = time.Minute

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(rl.WriteMiddleware()(okHandler()))
	handler.ServeHTTP(httptest.NewRecorder(), requestFrom(http.MethodPost, "192.0.2.1:1234"))

	if rl.GeneralLimiterCount() != 1 || rl.WriteLimiterCount() != 1 {
		t.Fatalf("counts = %d, %d, want 1, 1", rl.GeneralLimiterCount(), rl.WriteLimiterCount())
	}

	// TTL（CleanupIntervalの2倍）以内ではエントリは残る
	rl.cleanup(time.Now().Add(90 * time.Second))
	if rl.GeneralLimiterCount() != 1 {
		t.Errorf("GeneralLimiterCount = %d, want 1 before TTL", rl.GeneralLimiterCount())
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.GeneralLimiterCount() != 0 || rl.WriteLimiterCount() != 0 {
		t.Errorf("counts after cleanup = %d, %d, want 0, 0", rl.GeneralLimiterCount(), rl.WriteLimiterCount())
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())

	rl.Stop()
	rl.Stop()
}

// --- 設定値のテスト ---

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.GeneralRate != 2.0 { // 120/60 = 2
		t.Errorf("GeneralRate = %f, want 2.0", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.WriteRate != 1.0 { // 60/60 = 1
		t.Errorf("WriteRate = %f, want 1.0", cfg.WriteRate)
	}
	if cfg.WriteBurst != 60 {
		t.Errorf("WriteBurst = %d, want 60", cfg.WriteBurst)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := requestFrom(http.MethodGet, tt.remoteAddr)
			if got := clientKey(req); got != tt.want {
				t.Errorf("clientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
