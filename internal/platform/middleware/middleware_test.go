package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestIDGenerated(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	handler := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Fatal("expected request_id to be set")
	}
	if got := rec.Header().Get("X-Request-ID"); got != rid {
		t.Errorf("header X-Request-ID = %q, want %q", got, rid)
	}
}

func TestRequestIDHonorsIncoming(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")
	c.Request().Header.Set("X-Request-ID", "upstream-id")

	handler := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("header X-Request-ID = %q, want upstream-id", got)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	handler := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("boom")
	})

	err := handler(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", he.Code, http.StatusInternalServerError)
	}
}

func TestRateLimitWithinBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		c, _ := newTestContext(http.MethodGet, "/")
		if err := handler(c); err != nil {
			t.Fatalf("request %d rejected within burst: %v", i, err)
		}
	}
}

func TestRateLimitExceeded(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	c, _ := newTestContext(http.MethodGet, "/")
	if err := handler(c); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}

	c, rec := newTestContext(http.MethodGet, "/")
	err := handler(c)
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestSecurityHeaders(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	handler := SecurityHeaders()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	called := false
	handler := Logger(zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !called {
		t.Fatal("expected next handler to be called")
	}
}
