package cache

import (
	"context"
	"time"
)

// NoOpCache é uma implementação de Cache que não armazena nada.
// Usada para o cache de dados quando features.caching está desabilitado.
type NoOpCache struct{}

// Set no-op
func (c *NoOpCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

// Get sempre retorna cache miss
func (c *NoOpCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

// Delete no-op
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear no-op
func (c *NoOpCache) Clear(ctx context.Context, prefix string) error {
	return nil
}

// Ping sempre retorna sucesso
func (c *NoOpCache) Ping(ctx context.Context) error {
	return nil
}
