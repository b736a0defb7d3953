package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	"github.com/digitalsix/presenca-dashboard/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware limita tentativas por IP. Sem limitador configurado não limita nada.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	metrics *metrics.APIMetrics
	logger  *zap.Logger
}

// NewRateLimitMiddleware cria um novo middleware de rate limiting
func NewRateLimitMiddleware(limiter ratelimit.Limiter, metrics *metrics.APIMetrics, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
}

// IPRateLimit limita as requisições de um IP ao grupo de rotas identificado por scope
func (m *RateLimitMiddleware) IPRateLimit(scope string, limit int, period time.Duration) gin.HandlerFunc {
	if m.limiter == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		res, err := m.limiter.Allow(c.Request.Context(), ratelimit.LimitConfig{
			Key:    scope + ":" + clientIP,
			Limit:  limit,
			Period: period,
		})
		if err != nil {
			// o limitador já libera a requisição quando o Redis falha
			m.logger.Warn("erro ao verificar rate limit", zap.String("scope", scope), zap.Error(err))
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retryAfter := int(res.ResetAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			if m.metrics != nil {
				path := c.FullPath()
				if path == "" {
					path = c.Request.URL.Path
				}
				m.metrics.RateLimitExceeded(path, c.Request.Method, scope)
			}
			m.logger.Warn("limite de tentativas excedido",
				zap.String("scope", scope),
				zap.String("ip", clientIP))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Muitas tentativas. Aguarde e tente novamente.",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
