package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://apipresenca.digitalsix.com.br", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, int64(1), cfg.Upstream.EmpresaClienteID)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Dashboard.ClassDuration)
	assert.Equal(t, 4, cfg.Dashboard.ParticipantesConcurrency)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()

	yaml := []byte(`
upstream:
  baseURL: http://localhost:9999
  timeout: 3s
cache:
  type: memory
dashboard:
  classDuration: 45m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("DS_AUTH_JWTSECRET", "segredo-de-teste-com-mais-de-32-caracteres")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Upstream.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 45*time.Minute, cfg.Dashboard.ClassDuration)
	assert.Equal(t, "segredo-de-teste-com-mais-de-32-caracteres", cfg.Auth.JWTSecret)
}

func TestLoadConfig_InvalidCacheType(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("cache:\n  type: memcached\n"), 0o600))

	_, err := config.LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tipo de cache inválido")
}

func TestDefault(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	assert.Equal(t, "America/Sao_Paulo", cfg.Dashboard.Timezone)
	assert.Equal(t, 10, cfg.Auth.LoginRateLimit)
	assert.Equal(t, time.Minute, cfg.Auth.LoginRatePeriod)
	assert.True(t, cfg.Features.Audit)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
