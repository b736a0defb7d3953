package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config representa a configuração completa da aplicação
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Dashboard DashboardConfig
	Metrics   MetricsConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Features  FeaturesConfig
}

// ServerConfig contém configurações do servidor HTTP
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TLS            bool
	CertFile       string
	KeyFile        string
	Domains        []string
	AllowedOrigins []string
}

// UpstreamConfig contém configurações da API de presença (backend remoto)
type UpstreamConfig struct {
	BaseURL          string
	Timeout          time.Duration
	EmpresaClienteID int64
}

// DatabaseConfig contém configurações do banco de dados de auditoria
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	SlowThreshold   time.Duration
	MigrationDir    string
}

// RedisOptions contém configurações específicas para Redis
type RedisOptions struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
}

// CacheConfig contém configurações do cache de sessões e dados
type CacheConfig struct {
	Type            string // redis, memory
	TTL             time.Duration
	CleanupInterval time.Duration
	Redis           RedisOptions
}

// AuthConfig contém configurações de autenticação
type AuthConfig struct {
	JWTSecret       string
	SessionTTL      time.Duration
	LoginRateLimit  int
	LoginRatePeriod time.Duration
}

// DashboardConfig contém parâmetros das telas do painel
type DashboardConfig struct {
	ClassDuration            time.Duration
	Timezone                 string
	DataCacheTTL             time.Duration
	ParticipantesConcurrency int
	DefaultPeriodo           string
}

// MetricsConfig contém configurações de métricas
type MetricsConfig struct {
	Enabled        bool
	PrometheusPath string
}

// LoggingConfig contém configurações de logging
type LoggingConfig struct {
	Level      string
	Format     string // json, console
	OutputPath string // stdout, file path
	ErrorPath  string
	Production bool
}

// TracingConfig contém configurações de rastreamento
type TracingConfig struct {
	Enabled       bool
	Provider      string
	Endpoint      string
	ServiceName   string
	SamplingRatio float64
}

// FeaturesConfig contém flags de recursos
type FeaturesConfig struct {
	RateLimiter    bool
	CircuitBreaker bool
	Caching        bool
	AdminAPI       bool
	Audit          bool
}

// LoadConfig carrega a configuração de diversas fontes (arquivos, env, defaults)
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Definir valores padrão
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Locais para procurar arquivos de configuração
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dashboard")

	// Ler arquivo de configuração
	if err := v.ReadInConfig(); err != nil {
		// Ignorar se o arquivo não for encontrado
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
		}
	}

	// Ler variáveis de ambiente com prefixo DS_
	v.SetEnvPrefix("DS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("erro ao mapear configuração: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default retorna a configuração apenas com os valores padrão
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("erro ao mapear configuração: %w", err)
	}
	return &config, nil
}

// setDefaults define valores padrão para a configuração
func setDefaults(v *viper.Viper) {
	// Servidor
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.readTimeout", "5s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.maxHeaderBytes", 1<<20) // 1 MB
	v.SetDefault("server.tls", false)
	v.SetDefault("server.allowedOrigins", []string{"*"})

	// API de presença
	v.SetDefault("upstream.baseURL", "https://apipresenca.digitalsix.com.br")
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("upstream.empresaClienteId", 1)

	// Banco de dados
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./dashboard.db")
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.connMaxLifetime", "1h")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.migrationDir", "")

	// Cache
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanupInterval", "10m")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.poolSize", 10)
	v.SetDefault("cache.redis.minIdleConns", 2)
	v.SetDefault("cache.redis.maxRetries", 3)
	v.SetDefault("cache.redis.dialTimeout", "5s")
	v.SetDefault("cache.redis.readTimeout", "3s")
	v.SetDefault("cache.redis.writeTimeout", "3s")
	v.SetDefault("cache.redis.keyPrefix", "dashboard:")

	// Autenticação
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.sessionTTL", "24h")
	v.SetDefault("auth.loginRateLimit", 10)
	v.SetDefault("auth.loginRatePeriod", "1m")

	// Painel
	v.SetDefault("dashboard.classDuration", "1h")
	v.SetDefault("dashboard.timezone", "America/Sao_Paulo")
	v.SetDefault("dashboard.dataCacheTTL", "30s")
	v.SetDefault("dashboard.participantesConcurrency", 4)
	v.SetDefault("dashboard.defaultPeriodo", "6")

	// Métricas
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.prometheusPath", "/metrics")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
	v.SetDefault("logging.errorPath", "stderr")
	v.SetDefault("logging.production", true)

	// Tracing
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.provider", "opentelemetry")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.samplingRatio", 0.1) // 10% das requisições
	v.SetDefault("tracing.serviceName", "presenca-dashboard")

	// Features
	v.SetDefault("features.rateLimiter", true)
	v.SetDefault("features.circuitBreaker", true)
	v.SetDefault("features.caching", true)
	v.SetDefault("features.adminAPI", true)
	v.SetDefault("features.audit", true)
}

// validateConfig valida a configuração
func validateConfig(config *Config) error {
	if config.Auth.JWTSecret == "" {
		fmt.Println("AVISO: DS_AUTH_JWTSECRET não está definido. Uma chave temporária será gerada e as sessões não sobrevivem a reinícios.")
	}

	if config.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.baseURL não pode ser vazio")
	}

	if config.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout deve ser maior que zero")
	}

	// Validar configuração de TLS
	if config.Server.TLS && (config.Server.CertFile == "") != (config.Server.KeyFile == "") {
		return fmt.Errorf("TLS habilitado, mas apenas um entre CertFile e KeyFile foi definido")
	}

	if config.Features.Audit {
		validDrivers := map[string]bool{"sqlite": true, "mysql": true, "postgres": true}
		if !validDrivers[config.Database.Driver] {
			return fmt.Errorf("driver de banco de dados inválido: %s", config.Database.Driver)
		}
	}

	validTypes := map[string]bool{"memory": true, "redis": true}
	if !validTypes[config.Cache.Type] {
		return fmt.Errorf("tipo de cache inválido: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.Redis.Address == "" {
		return fmt.Errorf("tipo de cache redis requer um endereço")
	}

	if config.Dashboard.ParticipantesConcurrency <= 0 {
		config.Dashboard.ParticipantesConcurrency = 1
	}

	if _, err := time.LoadLocation(config.Dashboard.Timezone); err != nil {
		return fmt.Errorf("fuso horário inválido %q: %w", config.Dashboard.Timezone, err)
	}

	return nil
}
