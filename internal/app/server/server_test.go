package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexipayslip/internal/platform/config"
)

func testConfig() config.Config {
	return config.Config{
		Addr:               ":0",
		Environment:        "test",
		LogLevel:           "error",
		MaxBodyBytes:       5 << 20,
		RateLimitPerMinute: 1000,
		DraftTTL:           time.Hour,
		DraftSweepInterval: time.Minute,
		AllowedOrigins:     []string{"http://localhost:5173"},
		MetricsEnabled:     true,
		DefaultTheme:       "modern",
	}
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	app, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func serve(app *App, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	app := newTestApp(t, testConfig())
	assert.Nil(t, app.DB)

	rec := serve(app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(app, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestMiddlewareStack(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := serve(app, http.MethodPost, "/api/v1/drafts", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "1000", rec.Header().Get("X-RateLimit-Limit"))

	var env struct {
		Data struct {
			ID    string `json:"id"`
			Theme string `json:"theme"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "modern", env.Data.Theme)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/drafts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestJSONBodyLimit(t *testing.T) {
	app := newTestApp(t, testConfig())
	id := createDraft(t, app)

	huge := `{"companyName":"` + strings.Repeat("a", jsonBodyBytes) + `"}`
	rec := serve(app, http.MethodPut, "/api/v1/drafts/"+id+"/company", strings.NewReader(huge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, testConfig())
	serve(app, http.MethodGet, "/healthz", nil)

	rec := serve(app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payslip_http_requests_total")

	cfg := testConfig()
	cfg.MetricsEnabled = false
	rec = serve(newTestApp(t, cfg), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func createDraft(t *testing.T, app *App) string {
	t.Helper()
	rec := serve(app, http.MethodPost, "/api/v1/drafts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var env struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data.ID
}
