package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/app"
	"github.com/digitalsix/presenca-dashboard/internal/testutils"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePresenca simula as rotas da API de presença usadas no fluxo de login
func fakePresenca(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "upstream-token",
			"user":  map[string]interface{}{"id": 7, "nome": "Ana", "email": "ana@empresa.com", "tipo_usuario": "cliente_final"},
		})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer upstream-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"7","nome":"Ana Souza","email":"ana@empresa.com","tipo_usuario":"cliente_final"}}`))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{AllowedOrigins: []string{"*"}},
		Upstream: config.UpstreamConfig{BaseURL: baseURL, Timeout: 2 * time.Second, EmpresaClienteID: 1},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", MaxIdleConns: 1, MaxOpenConns: 1, LogLevel: "silent"},
		Cache:    config.CacheConfig{Type: "memory", TTL: time.Hour, CleanupInterval: time.Minute},
		Auth:     config.AuthConfig{JWTSecret: "segredo-de-teste-com-mais-de-32-caracteres", SessionTTL: time.Hour, LoginRateLimit: 5, LoginRatePeriod: time.Minute},
		Dashboard: config.DashboardConfig{
			ClassDuration:            time.Hour,
			Timezone:                 "America/Sao_Paulo",
			DataCacheTTL:             time.Minute,
			ParticipantesConcurrency: 2,
			DefaultPeriodo:           "6",
		},
		Metrics:  config.MetricsConfig{Enabled: true, PrometheusPath: "/metrics"},
		Tracing:  config.TracingConfig{ServiceName: "presenca-dashboard"},
		Features: config.FeaturesConfig{RateLimiter: true, CircuitBreaker: true, Caching: true, AdminAPI: true, Audit: true},
	}
}

func newRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *app.App) {
	t.Helper()
	ctx := context.Background()

	a, err := app.NewApp(ctx, cfg, testutils.TestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(ctx) })

	router := testutils.SetupTestRouter(t)
	a.RegisterRoutes(router)
	return router, a
}

func TestApp_LoginFlow(t *testing.T) {
	srv := fakePresenca(t)
	router, a := newRouter(t, testConfig(srv.URL))

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": "ana@empresa.com", "senha": "123456"}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	var login struct {
		Token string `json:"token"`
	}
	testutils.ParseResponse(t, resp, &login)
	require.NotEmpty(t, login.Token)
	headers := map[string]string{"Authorization": "Bearer " + login.Token}

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/auth/me", nil, headers)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.Contains(t, resp.Body.String(), "Ana Souza")

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/admin/stats", nil, headers)
	testutils.RequireHTTPStatus(t, resp, http.StatusForbidden)

	resp = testutils.MakeRequest(t, router, http.MethodPost, "/auth/logout", nil, headers)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/auth/me", nil, headers)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

	events, err := a.Services.Audit.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "logout", events[0].Acao)
	assert.Equal(t, "login", events[1].Acao)
}

func TestApp_PublicRoutes(t *testing.T) {
	srv := fakePresenca(t)
	router, _ := newRouter(t, testConfig(srv.URL))

	for _, path := range []string{"/health", "/health/liveness", "/health/readiness", "/metrics"} {
		resp := testutils.MakeRequest(t, router, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, resp.Code, path)
	}

	resp := testutils.MakeRequest(t, router, http.MethodGet, "/cliente/dashboard", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)
	assert.Equal(t, "nosniff", resp.Header().Get("X-Content-Type-Options"))
}

func TestApp_FeatureFlags(t *testing.T) {
	srv := fakePresenca(t)
	cfg := testConfig(srv.URL)
	cfg.Features.AdminAPI = false
	cfg.Features.Audit = false
	cfg.Metrics.Enabled = false

	router, a := newRouter(t, cfg)
	assert.Nil(t, a.DB)
	assert.False(t, a.Services.Audit.Enabled())

	resp := testutils.MakeRequest(t, router, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/health/readiness", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.NotContains(t, resp.Body.String(), "database")
}
