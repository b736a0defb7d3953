package app

import (
	"context"
	"fmt"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/database"
	"github.com/digitalsix/presenca-dashboard/internal/adapter/http"
	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/domain/repository"
	"github.com/digitalsix/presenca-dashboard/internal/domain/service"
	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	"github.com/digitalsix/presenca-dashboard/internal/infra/middleware"
	"github.com/digitalsix/presenca-dashboard/pkg/cache"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"github.com/digitalsix/presenca-dashboard/pkg/ratelimit"
	"github.com/digitalsix/presenca-dashboard/pkg/resilience"
	"github.com/digitalsix/presenca-dashboard/pkg/security"
	"github.com/digitalsix/presenca-dashboard/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App reúne as dependências do painel
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *database.Database
	Cache      cache.Cache
	Upstream   *upstream.Client
	Services   *service.Services
	Middleware *middleware.Middleware
	APIMetrics *metrics.APIMetrics
	Tracer     *telemetry.TracerProvider

	auth    *http.AuthHandler
	cliente *http.ClienteHandler
	admin   *http.AdminHandler
	health  *http.HealthChecker
}

// NewApp cria uma nova instância da aplicação com todas as dependências injetadas
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:     cfg,
		Logger:     logger,
		APIMetrics: metrics.NewAPIMetrics(),
	}

	// Rastreamento é opcional: falha na inicialização apenas gera log
	if cfg.Tracing.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, cfg.Tracing, logger)
		if err != nil {
			logger.Error("Falha ao inicializar tracer", zap.Error(err))
		} else {
			a.Tracer = tp
		}
	}

	// Cache de sessões e dados
	c, err := cache.New(cfg.Cache, a.APIMetrics, logger)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar cache: %w", err)
	}
	a.Cache = c

	// Banco de auditoria
	var auditRepo repository.AuditRepository
	if cfg.Features.Audit {
		db, err := database.NewDatabase(ctx, cfg.Database, logger)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("erro ao inicializar banco de auditoria: %w", err)
		}
		a.DB = db
		auditRepo = database.NewAuditRepository(db.DB(), logger)
	}

	// Cliente da API de presença
	opts := []upstream.Option{upstream.WithMetrics(a.APIMetrics)}
	if cfg.Features.CircuitBreaker {
		opts = append(opts, upstream.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:      "upstream",
			IsFailure: upstream.IsBreakerFailure,
		}, logger, a.APIMetrics)))
	}
	a.Upstream = upstream.NewClient(cfg.Upstream, logger, opts...)

	keyManager, err := security.NewKeyManager(cfg.Auth.JWTSecret, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	services, err := service.NewServices(cfg, a.Upstream, c, auditRepo, a.APIMetrics, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Services = services

	deps := middleware.Deps{
		Tokens:   keyManager,
		Sessions: services.Sessions,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = a.APIMetrics
	}
	if limiter := a.loginLimiter(); limiter != nil {
		deps.Limiter = limiter
	}
	a.Middleware = middleware.NewMiddleware(cfg, deps, logger)

	a.auth = http.NewAuthHandler(a.Upstream, services.Sessions, keyManager, services.Audit, logger)
	a.cliente = http.NewClienteHandler(services.Dashboard, services.Exports, services.Sessions, services.Audit, logger)
	a.admin = http.NewAdminHandler(services.Dashboard, services.Sessions, services.Audit, logger)
	if a.DB != nil {
		a.health = http.NewHealthChecker(a.Upstream, c, a.DB, logger)
	} else {
		a.health = http.NewHealthChecker(a.Upstream, c, nil, logger)
	}

	return a, nil
}

// loginLimiter usa o Redis do cache quando disponível; sem Redis não há limite de login
func (a *App) loginLimiter() ratelimit.Limiter {
	if !a.Config.Features.RateLimiter {
		return nil
	}
	rc, ok := a.Cache.(*cache.RedisCache)
	if !ok {
		a.Logger.Warn("Limite de tentativas de login requer cache redis; desativado")
		return nil
	}
	return ratelimit.NewRedisLimiter(rc.Client(), a.Logger)
}

// RegisterRoutes registra todas as rotas no router
func (a *App) RegisterRoutes(router *gin.Engine) {
	mw := a.Middleware

	// Configurar middleware global
	router.Use(mw.Recovery())
	router.Use(mw.IgnoreFavicon())
	router.Use(mw.Tracing())
	router.Use(mw.Logger())
	router.Use(mw.SecurityHeaders())
	router.Use(mw.CORS())
	router.Use(mw.Metrics())

	// Rotas públicas
	router.GET("/health", a.health.LivenessCheck)
	router.GET("/health/liveness", a.health.LivenessCheck)
	router.GET("/health/readiness", a.health.ReadinessCheck)
	if a.Config.Metrics.Enabled {
		mw.RegisterMetricsEndpoint(router, a.Config.Metrics.PrometheusPath)
		a.Logger.Info("Endpoint de métricas Prometheus registrado",
			zap.String("path", a.Config.Metrics.PrometheusPath))
	}

	router.POST("/auth/login", mw.LoginRateLimit(), a.auth.Login)

	// Rotas autenticadas
	authed := router.Group("/", mw.Authenticate)
	authed.POST("/auth/logout", a.auth.Logout)
	authed.GET("/auth/me", a.auth.Me)

	cliente := authed.Group("/cliente")
	{
		cliente.GET("/dashboard", a.cliente.Dashboard)
		cliente.GET("/stats", a.cliente.Stats)
		cliente.GET("/aulas", a.cliente.Aulas)
		cliente.GET("/aulas/:id/participantes", a.cliente.Participantes)
		cliente.GET("/funcionarios", a.cliente.Funcionarios)
		cliente.GET("/graficos", a.cliente.Graficos)
		cliente.GET("/relatorios", a.cliente.Relatorios)
		cliente.GET("/evolucao", a.cliente.Evolucao)
		cliente.GET("/export/:tipo", a.cliente.ExportRemoto)
	}

	exports := authed.Group("/cliente/exports")
	{
		exports.GET("/aulas", a.cliente.ExportAulas)
		exports.GET("/aulas/:id", a.cliente.ExportAula)
		exports.GET("/funcionarios", a.cliente.ExportFuncionarios)
	}

	// Rotas administrativas
	if !a.Config.Features.AdminAPI {
		return
	}
	admin := authed.Group("/admin", mw.RequireAdmin)
	{
		admin.GET("/stats", a.admin.Stats)
		admin.GET("/usuarios", a.admin.ListUsuarios)
		admin.POST("/usuarios", a.admin.CreateUsuario)
		admin.PUT("/usuarios/:id", a.admin.UpdateUsuario)
		admin.DELETE("/usuarios/:id", a.admin.DeleteUsuario)
		admin.GET("/auditoria", a.admin.Auditoria)
		admin.POST("/cache/limpar", a.admin.LimparCache)
		admin.GET("/health", a.health.DetailedHealth)
	}
}

// Close libera banco, cache e rastreamento
func (a *App) Close(ctx context.Context) {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Erro ao fechar banco de dados", zap.Error(err))
		}
	}
	if rc, ok := a.Cache.(*cache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			a.Logger.Error("Erro ao fechar conexão com redis", zap.Error(err))
		}
	}
	if a.Tracer != nil {
		a.Tracer.Shutdown(ctx)
	}
}
