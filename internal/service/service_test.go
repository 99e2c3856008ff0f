package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/lib/cache"
	"github.com/deppfellow/sovyx-backend/internal/lib/instagram"
	"github.com/deppfellow/sovyx-backend/internal/repository"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func clock() time.Time { return fixedNow }

type graphCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

type graphRoute func(call graphCall) (int, any)

// fakeGraph serves canned Graph API responses keyed by "METHOD /path".
type fakeGraph struct {
	*httptest.Server

	mu     sync.Mutex
	calls  []graphCall
	routes map[string]graphRoute
}

func newFakeGraph(t *testing.T, routes map[string]graphRoute) *fakeGraph {
	t.Helper()

	g := &fakeGraph{routes: routes}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := graphCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&call.Body)
		}

		g.mu.Lock()
		g.calls = append(g.calls, call)
		route, ok := g.routes[r.Method+" "+r.URL.Path]
		if !ok {
			route, ok = g.routes[r.Method+" *"]
		}
		g.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"unknown path"}}`))
			return
		}

		status, body := route(call)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(g.Close)

	return g
}

func (g *fakeGraph) Calls() []graphCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]graphCall(nil), g.calls...)
}

func reply(body any) graphRoute {
	return func(graphCall) (int, any) { return http.StatusOK, body }
}

func testConfig(graphURL string) *config.Config {
	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server:  config.ServerConfig{Port: "8080", PublicBaseURL: "https://sovyx.example.com"},
		Instagram: config.InstagramConfig{
			GraphURL:              graphURL,
			AccessToken:           "owner-token",
			UserID:                "1001",
			ProcessingInterval:    time.Millisecond,
			ProcessingMaxAttempts: 3,
			Timeout:               5 * time.Second,
		},
		Tenants: map[string]config.TenantConfig{
			"client1": {AccessToken: "client1-token", UserID: "2002"},
			"client2": {},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

type testDeps struct {
	cfg         *config.Config
	store       *repository.MemoryCredentialStore
	credentials *CredentialService
	graph       *instagram.Client
	uploads     *UploadService
	cache       *cache.MemoryUploadCache
}

func newTestDeps(t *testing.T, graphURL string) *testDeps {
	t.Helper()

	logger := zerolog.Nop()
	cfg := testConfig(graphURL)
	store := repository.NewMemoryCredentialStore()
	graph := instagram.NewClient(cfg.Instagram, &logger)
	credentials := NewCredentialService(cfg, store, graph, &logger)

	mem := cache.NewMemoryUploadCache(cache.WithClock(clock))
	uploads := NewUploadService(cfg, mem, &logger)
	uploads.now = clock

	return &testDeps{
		cfg:         cfg,
		store:       store,
		credentials: credentials,
		graph:       graph,
		uploads:     uploads,
		cache:       mem,
	}
}
