package middleware

import (
	"net/http"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"github.com/digitalsix/presenca-dashboard/pkg/logging"
	"github.com/digitalsix/presenca-dashboard/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Middleware contém todos os middlewares da aplicação
type Middleware struct {
	logger              *logging.ContextLogger
	authMiddleware      *AuthMiddleware
	recoveryMiddleware  *RecoveryMiddleware
	securityMiddleware  *SecurityMiddleware
	tracingMiddleware   *TracingMiddleware
	metricsMiddleware   *MetricsMiddleware
	rateLimitMiddleware *RateLimitMiddleware
	loginLimit          int
	loginPeriod         time.Duration
}

// Deps reúne as dependências dos middlewares; Limiter e Metrics são opcionais
type Deps struct {
	Tokens   TokenVerifier
	Sessions SessionStore
	Limiter  ratelimit.Limiter
	Metrics  *metrics.APIMetrics
}

// NewMiddleware cria um novo conjunto de middlewares
func NewMiddleware(cfg *config.Config, deps Deps, logger *zap.Logger) *Middleware {
	m := &Middleware{
		logger:              logging.NewContextLogger(logger),
		authMiddleware:      NewAuthMiddleware(deps.Tokens, deps.Sessions, logger),
		recoveryMiddleware:  NewRecoveryMiddleware(logger),
		securityMiddleware:  NewSecurityMiddleware(cfg.Server.AllowedOrigins, logger),
		tracingMiddleware:   NewTracingMiddleware(cfg.Tracing.ServiceName, logger),
		rateLimitMiddleware: NewRateLimitMiddleware(deps.Limiter, deps.Metrics, logger),
		loginLimit:          cfg.Auth.LoginRateLimit,
		loginPeriod:         cfg.Auth.LoginRatePeriod,
	}
	if deps.Metrics != nil {
		m.metricsMiddleware = NewMetricsMiddleware(deps.Metrics, logger)
	}
	return m
}

// Metrics retorna o middleware de métricas
func (m *Middleware) Metrics() gin.HandlerFunc {
	if m.metricsMiddleware != nil {
		return m.metricsMiddleware.Middleware()
	}
	return func(c *gin.Context) {
		c.Next() // No-op se não configurado
	}
}

// RegisterMetricsEndpoint expõe /metrics quando as métricas estão habilitadas
func (m *Middleware) RegisterMetricsEndpoint(router gin.IRoutes, path string) {
	if m.metricsMiddleware != nil {
		m.metricsMiddleware.RegisterEndpoint(router, path)
	}
}

// Authenticate exige sessão válida
func (m *Middleware) Authenticate(c *gin.Context) {
	m.authMiddleware.Authenticate(c)
}

// RequireAdmin exige sessão de administrador
func (m *Middleware) RequireAdmin(c *gin.Context) {
	m.authMiddleware.RequireAdmin(c)
}

// LoginRateLimit limita as tentativas de login por IP
func (m *Middleware) LoginRateLimit() gin.HandlerFunc {
	return m.rateLimitMiddleware.IPRateLimit("login", m.loginLimit, m.loginPeriod)
}

// Recovery middleware para recuperação de pânicos
func (m *Middleware) Recovery() gin.HandlerFunc {
	return m.recoveryMiddleware.Recovery()
}

// IgnoreFavicon é um middleware que ignora requisições para /favicon.ico
func (m *Middleware) IgnoreFavicon() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/favicon.ico" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Logger registra cada requisição com trace_id quando houver rastreamento
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("path", path),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if sess, ok := SessionFrom(c); ok && sess.User != nil {
			fields = append(fields, zap.String("user_id", sess.User.ID.String()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= 500:
			m.logger.ErrorCtx(ctx, "request completed", fields...)
		case status >= 400:
			m.logger.WarnCtx(ctx, "request completed", fields...)
		default:
			m.logger.InfoCtx(ctx, "request completed", fields...)
		}
	}
}

// SecurityHeaders middleware para adicionar cabeçalhos de segurança
func (m *Middleware) SecurityHeaders() gin.HandlerFunc {
	return m.securityMiddleware.Headers()
}

// CORS middleware para configurar CORS
func (m *Middleware) CORS() gin.HandlerFunc {
	return m.securityMiddleware.CORS()
}

// Tracing retorna o middleware de tracing
func (m *Middleware) Tracing() gin.HandlerFunc {
	return m.tracingMiddleware.Middleware()
}
