package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/internal/guidepack"
	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/stage"
	"github.com/killallgit/guidepack/pkg/config"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := guidepack.NewStore(filepath.Join(t.TempDir(), "packs"))
	require.NoError(t, err)
	runner := stage.RunnerFunc(func(context.Context, string, []string, string) stage.Result {
		return stage.Result{}
	})

	server := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0})
	server.SetDependencies(&types.Dependencies{
		Orchestrator: pipeline.New(store, runner, nil, nil, pipeline.Config{}),
		Config:       cfg,
		Logger:       logging.NewNop(),
	})
	require.NoError(t, server.Initialize())
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })
	return server
}

func TestRegisterRoutes(t *testing.T) {
	server := newTestServer(t, &config.Config{})

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"version", http.MethodGet, "/", http.StatusOK},
		{"docs redirect", http.MethodGet, "/docs", http.StatusMovedPermanently},
		{"swagger doc", http.MethodGet, "/docs/doc.json", http.StatusOK},
		{"list guidepacks", http.MethodGet, "/api/v1/guidepacks", http.StatusOK},
		{"jobs need a queue", http.MethodGet, "/api/v1/jobs/1", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/v1/tracks", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.Engine().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestNotFoundHandler(t *testing.T) {
	server := newTestServer(t, &config.Config{})

	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/nope", body["path"])
}

func TestStageRoutesAreRateLimited(t *testing.T) {
	cfg := &config.Config{RateLimiting: config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}}
	server := newTestServer(t, cfg)

	post := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/guidepacks/3f2b9c1e-8a4d-4d6e-9b1a-2c3d4e5f6a7b/mask", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		server.Engine().ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNotFound, post(), "first request reaches the handler")
	assert.Equal(t, http.StatusTooManyRequests, post())

	// reads are not throttled
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/guidepacks", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		server.Engine().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRegisterRoutesRequiresOrchestrator(t *testing.T) {
	engine := gin.New()
	err := RegisterRoutes(engine, &types.Dependencies{}, nil, nil, nil)
	assert.Error(t, err)
}
