package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, mutate func(*config.Config)) *server.Server {
	t.Helper()

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server:  config.ServerConfig{Port: "0"},
	}
	if mutate != nil {
		mutate(cfg)
	}
	cfg.ApplyDefaults()

	logger := zerolog.Nop()
	return &server.Server{Config: cfg, Logger: &logger}
}

func newEcho(s *server.Server, mws ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(mws...)
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	s := testServer(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{RPS: 1, Burst: 1}
	})
	rl := NewRateLimitMiddleware(s)
	e := newEcho(s, rl.Limit())
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	body := decodeError(t, rec)
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Code)
	require.NotNil(t, body.Action)
	assert.Equal(t, errs.ActionTypeRetry, body.Action.Type)
	assert.Equal(t, "1s", body.Action.Value)
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	s := testServer(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{RPS: 1, Burst: 1}
	})
	rl := NewRateLimitMiddleware(s)
	e := newEcho(s, rl.Limit())
	e.IPExtractor = NewIPExtractor(nil)
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	allowed := 0
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set(echo.HeaderXForwardedFor, fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, rl.store.size())
}

func TestIPExtractor_TrustedProxies(t *testing.T) {
	extract := NewIPExtractor([]string{"10.0.0.0/8"})

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"forwarded by trusted proxy", "10.1.2.3:443", "203.0.113.9", "203.0.113.9"},
		{"spoofed chain behind trusted proxy", "10.1.2.3:443", "1.2.3.4, 203.0.113.9", "203.0.113.9"},
		{"untrusted peer", "198.51.100.4:443", "203.0.113.9", "198.51.100.4"},
		{"private peer not configured", "192.168.1.5:443", "203.0.113.9", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set(echo.HeaderXForwardedFor, tt.xff)
			assert.Equal(t, tt.want, extract(req))
		})
	}

	direct := NewIPExtractor(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:443"
	req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.9")
	assert.Equal(t, "10.1.2.3", direct(req))
}

func TestRateLimit_DisabledIsPassThrough(t *testing.T) {
	s := testServer(t, nil)
	rl := NewRateLimitMiddleware(s)
	assert.Nil(t, rl.store)

	e := newEcho(s, rl.Limit())
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLimiterStore_CleanupDropsIdleEntries(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	store := newLimiterStore(5, 10)
	store.now = func() time.Time { return now }

	first := store.get("198.51.100.1")
	assert.Same(t, first, store.get("198.51.100.1"))
	store.get("198.51.100.2")
	assert.Equal(t, 2, store.size())

	now = now.Add(10 * time.Minute)
	store.get("198.51.100.2")

	now = now.Add(6 * time.Minute)
	store.cleanup()
	assert.Equal(t, 1, store.size())
	assert.NotSame(t, first, store.get("198.51.100.1"))
}

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	s := testServer(t, nil)
	e := newEcho(s, RequestID())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\twith spaces")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Len(t, rec.Body.String(), 36)
}

func TestEnhanceContext_StoresClientParam(t *testing.T) {
	s := testServer(t, nil)
	e := newEcho(s, RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.GET("/api/:client/status", func(c echo.Context) error {
		assert.NotNil(t, GetLogger(c))
		return c.String(http.StatusOK, c.Get(ClientKey).(string))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/client1/status", nil))
	assert.Equal(t, "client1", rec.Body.String())
}

func TestGlobalErrorHandler(t *testing.T) {
	s := testServer(t, nil)
	e := newEcho(s)
	e.GET("/bad", func(c echo.Context) error {
		return errs.NewBadRequestError("invalid client", true, nil, nil, nil)
	})
	e.GET("/upstream", func(c echo.Context) error {
		return errs.NewUpstreamError("failed to publish to Instagram").
			WithRaw(map[string]any{"error": map[string]any{"message": "boom"}})
	})
	e.GET("/missing-row", func(c echo.Context) error { return pgx.ErrNoRows })
	e.GET("/boom", func(c echo.Context) error { return errors.New("disk on fire") })

	tests := []struct {
		name    string
		path    string
		status  int
		code    string
		message string
		hasRaw  bool
	}{
		{"http error", "/bad", http.StatusBadRequest, "BAD_REQUEST", "invalid client", false},
		{"upstream raw payload", "/upstream", http.StatusInternalServerError, "UPSTREAM_ERROR", "failed to publish to Instagram", true},
		{"no rows", "/missing-row", http.StatusNotFound, "NOT_FOUND", "Resource not found", false},
		{"unknown error", "/boom", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error", false},
		{"unknown route", "/nowhere", http.StatusNotFound, "NOT_FOUND", "Route not found", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.hasRaw, body.Raw != nil)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := testServer(t, nil)
	e := newEcho(s, NewGlobalMiddlewares(s).CORS())
	e.POST("/api/publish", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/publish", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
	assert.Equal(t, "86400", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestAuth_EnabledFollowsSecretKey(t *testing.T) {
	assert.False(t, NewAuthMiddleware(testServer(t, nil)).Enabled())

	s := testServer(t, func(c *config.Config) { c.Auth.SecretKey = "sk_test_123" })
	assert.True(t, NewAuthMiddleware(s).Enabled())
}
