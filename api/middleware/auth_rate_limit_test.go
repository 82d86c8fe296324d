package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeLimiterStore struct {
	counts map[string]int64
}

func (f *fakeLimiterStore) FixedWindowAllow(_ context.Context, key string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key] <= limit, f.counts[key], nil
}

func postLogin(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:4444"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthRateLimitBlocksAfterEmailLimit(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 100, 2)

	var sawBody string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		sawBody = string(payload)
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthRateLimit(policy, store, nil)(next)

	body := `{"email":"Flood@Acme.com","password":"pw"}`
	for i := 0; i < 2; i++ {
		if resp := postLogin(handler, body); resp.Code != http.StatusOK {
			t.Fatalf("attempt %d should pass, got %d", i+1, resp.Code)
		}
	}
	if sawBody != body {
		t.Fatalf("body must be replayed to the next handler, got %q", sawBody)
	}

	resp := postLogin(handler, body)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestAuthRateLimitBlocksAfterIPLimit(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthRateLimit(policy, store, nil)(next)

	if resp := postLogin(handler, `{}`); resp.Code != http.StatusOK {
		t.Fatalf("first attempt should pass, got %d", resp.Code)
	}
	if resp := postLogin(handler, `{}`); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthRateLimit(policy, &fakeLimiterStore{}, nil)(next)

	for i := 0; i < 10; i++ {
		if resp := postLogin(handler, `{}`); resp.Code != http.StatusOK {
			t.Fatalf("disabled policy must never block, got %d", resp.Code)
		}
	}
}

func TestEmailKeysAreHashedAndCaseInsensitive(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthRateLimit(policy, store, nil)(next)

	postLogin(handler, `{"email":"Same@Acme.com"}`)
	resp := postLogin(handler, `{"email":"same@acme.com"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("case variants must share a counter, got %d", resp.Code)
	}
	for key := range store.counts {
		if strings.Contains(key, "@") {
			t.Fatalf("raw email leaked into redis key %q", key)
		}
	}
}
