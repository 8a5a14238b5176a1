package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/redis/redistest"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_SessionLimitTriggers(t *testing.T) {
	store := redis.NewWithCmdable(redistest.NewMockCmdable())
	handler := RateLimit(NewRateLimitPolicy("mutation", time.Minute, 2), store, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
		req = req.WithContext(WithSessionID(req.Context(), "sess-1"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		switch {
		case i < 2 && rec.Code != http.StatusOK:
			t.Fatalf("expected success before limit, got %d", rec.Code)
		case i >= 2:
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "60" {
				t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code: %s", payload.Error.Code)
			}
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	req = req.WithContext(WithSessionID(req.Context(), "sess-2"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other sessions must not share the counter, got %d", rec.Code)
	}
}

func TestRateLimit_FallsBackToIP(t *testing.T) {
	mock := redistest.NewMockCmdable()
	handler := RateLimit(NewRateLimitPolicy("mutation", time.Minute, 1), redis.NewWithCmdable(mock), nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
		req.RemoteAddr = "5.6.7.8:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
	}
	if _, ok := mock.Counters["sf:rate_limit:mutation:ip:5.6.7.8"]; !ok {
		t.Fatalf("expected ip scoped counter, got %v", mock.Counters)
	}
}

func TestRateLimit_MintedSessionsShareTheIPCounter(t *testing.T) {
	mock := redistest.NewMockCmdable()
	handler := RateLimit(NewRateLimitPolicy("mutation", time.Minute, 2), redis.NewWithCmdable(mock), nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
		req.RemoteAddr = "5.6.7.8:1234"
		ctx := WithSessionID(req.Context(), fmt.Sprintf("fresh-%d", i))
		req = req.WithContext(WithSessionMinted(ctx))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		want := http.StatusOK
		if i == 2 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
	for key := range mock.Counters {
		if strings.Contains(key, ":session:") {
			t.Fatalf("minted sessions must not get their own counter, got %s", key)
		}
	}
}

func TestRateLimit_RotatingSessionIDsHitTheIPCap(t *testing.T) {
	const limit = 2
	handler := RateLimit(NewRateLimitPolicy("mutation", time.Minute, limit), redis.NewWithCmdable(redistest.NewMockCmdable()), nil)(okHandler())

	allowed := 0
	for i := 0; i < limit*sharedIPFactor+3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
		req.RemoteAddr = "5.6.7.8:1234"
		req = req.WithContext(WithSessionID(req.Context(), fmt.Sprintf("rotated-%d", i)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != limit*sharedIPFactor {
		t.Fatalf("expected %d allowed, got %d", limit*sharedIPFactor, allowed)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	req = req.WithContext(WithSessionID(req.Context(), "rotated-0"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("another address must keep its own allowance, got %d", rec.Code)
	}
}

func TestRateLimit_SafeMethodsAndDisabledPolicyPassThrough(t *testing.T) {
	mock := redistest.NewMockCmdable()
	handler := RateLimit(NewRateLimitPolicy("mutation", time.Minute, 1), redis.NewWithCmdable(mock), nil)(okHandler())
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET must not be limited, got %d", rec.Code)
		}
	}
	if len(mock.Counters) != 0 {
		t.Fatalf("GET must not be counted")
	}

	disabled := RateLimit(NewRateLimitPolicy("mutation", 0, 1), redis.NewWithCmdable(mock), nil)(okHandler())
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("disabled policy must pass through, got %d", rec.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimit_StoreErrorIsDependencyFailure(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("mutation", time.Minute, 5), failingLimiter{}, nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestClientIPPrefersForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 9.9.9.9 , 10.0.0.1")
	if got := clientIP(req); got != "9.9.9.9" {
		t.Fatalf("unexpected ip %q", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")
	if got := clientIP(req); got != "8.8.8.8" {
		t.Fatalf("unexpected ip %q", got)
	}
}

func TestRateLimit_ConcurrentRequestsRespectLimit(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("mutation", time.Minute, 10), redis.NewWithCmdable(redistest.NewMockCmdable()), nil)(okHandler())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(WithSessionID(req.Context(), "busy"))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 10 {
		t.Fatalf("expected exactly 10 allowed, got %d", allowed)
	}
}
