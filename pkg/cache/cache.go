package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"go.uber.org/zap"
)

// Cache define a interface usada para sessões e para o cache de dados do painel
type Cache interface {
	// Set armazena um valor no cache com tempo de expiração
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get recupera um valor do cache
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Delete remove um valor do cache
	Delete(ctx context.Context, key string) error

	// Clear remove todos os valores cujo nome começa com o prefixo informado
	Clear(ctx context.Context, prefix string) error

	// Ping verifica se o cache está acessível
	Ping(ctx context.Context) error
}

// New cria o cache configurado (memory ou redis)
func New(cfg config.CacheConfig, m *metrics.APIMetrics, logger *zap.Logger) (Cache, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryCache(cfg.TTL, cfg.CleanupInterval, m, logger), nil
	case "redis":
		return NewRedisCache(cfg.Redis, m, logger)
	default:
		return nil, fmt.Errorf("tipo de cache não suportado: %s", cfg.Type)
	}
}

// updateCacheMetrics atualiza a taxa de acertos do cache
func updateCacheMetrics(hits, misses int64, cacheType string, m *metrics.APIMetrics) {
	if m == nil {
		return
	}

	total := hits + misses
	if total > 0 {
		m.UpdateCacheHitRatio(cacheType, float64(hits)/float64(total))
	}
}
