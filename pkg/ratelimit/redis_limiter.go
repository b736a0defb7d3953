package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LimitConfig configura uma janela fixa de limitação
type LimitConfig struct {
	Key    string        // Chave única para identificar o limite (ex.: login:<ip>)
	Limit  int           // Número máximo de tentativas na janela
	Period time.Duration // Duração da janela
}

// Result descreve a decisão do limitador
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// Limiter decide se uma requisição pode prosseguir
type Limiter interface {
	Allow(ctx context.Context, cfg LimitConfig) (Result, error)
}

var fixedWindow = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local expireAt = tonumber(ARGV[2])
local ttl = expireAt - tonumber(ARGV[3])

local count = redis.call('INCR', key)
if count == 1 then
    redis.call('EXPIREAT', key, expireAt)
end

return {count, limit - count, ttl}
`)

// RedisLimiter implementa limitação por janela fixa usando Redis
type RedisLimiter struct {
	client *redis.Client
	logger *zap.Logger
	tracer trace.Tracer
}

// NewRedisLimiter cria um novo limitador baseado em Redis
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("dashboard.ratelimit"),
	}
}

// Allow verifica se a requisição está dentro do limite.
// Em caso de erro no Redis a requisição é permitida.
func (r *RedisLimiter) Allow(ctx context.Context, cfg LimitConfig) (Result, error) {
	ctx, span := r.tracer.Start(ctx, "RedisLimiter.Allow",
		trace.WithAttributes(
			attribute.Int("ratelimit.limit", cfg.Limit),
			attribute.Int64("ratelimit.period_ms", cfg.Period.Milliseconds()),
		),
	)
	defer span.End()

	open := Result{Allowed: true, Limit: cfg.Limit, Remaining: cfg.Limit}

	if cfg.Limit <= 0 {
		span.SetStatus(codes.Error, "invalid limit")
		return open, errors.New("limite deve ser maior que zero")
	}

	periodSeconds := int64(cfg.Period.Seconds())
	if periodSeconds <= 0 {
		span.SetStatus(codes.Error, "invalid period")
		return open, errors.New("período deve ser de pelo menos um segundo")
	}

	key := "ratelimit:" + cfg.Key
	now := time.Now().Unix()
	expireAt := now - (now % periodSeconds) + periodSeconds
	open.ResetAfter = time.Duration(expireAt-now) * time.Second

	raw, err := fixedWindow.Run(ctx, r.client, []string{key}, cfg.Limit, expireAt, now).Result()
	if err != nil {
		r.logger.Error("erro ao executar script de rate limit", zap.Error(err))
		span.SetStatus(codes.Error, "redis script error")
		return open, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		r.logger.Error("resultado inesperado do script de rate limit", zap.Any("result", raw))
		span.SetStatus(codes.Error, "unexpected result")
		return open, errors.New("resultado inválido do Redis")
	}

	count, _ := strconv.Atoi(fmt.Sprint(values[0]))
	remaining, _ := strconv.Atoi(fmt.Sprint(values[1]))
	ttl, _ := strconv.ParseInt(fmt.Sprint(values[2]), 10, 64)
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:    count <= cfg.Limit,
		Limit:      cfg.Limit,
		Remaining:  remaining,
		ResetAfter: time.Duration(ttl) * time.Second,
	}

	span.SetAttributes(
		attribute.Int("ratelimit.count", count),
		attribute.Bool("ratelimit.allowed", res.Allowed),
	)
	if !res.Allowed {
		span.SetStatus(codes.Error, "rate limit exceeded")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return res, nil
}
