package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/digitalsix/presenca-dashboard/pkg/resilience"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	headerEmpresa = "X-Empresa-Cliente-Id"
	maxErrorBody  = 64 << 10
)

// MsgCircuitOpen é exibida enquanto o circuit breaker da API está aberto
const MsgCircuitOpen = "Serviço temporariamente indisponível. Tente novamente em instantes."

// Auth identifica quem faz a chamada: token bearer e empresa cliente
type Auth struct {
	Token     string
	EmpresaID model.ID
}

// Client é o cliente HTTP da API de presença
type Client struct {
	baseURL   string
	http      *http.Client
	empresaID int64
	breaker   *resilience.CircuitBreaker
	metrics   *metrics.APIMetrics
	logger    *zap.Logger
	tracer    trace.Tracer
}

// Option configura o Client
type Option func(*Client)

// WithHTTPClient substitui o http.Client padrão
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCircuitBreaker protege as chamadas com um circuit breaker
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// WithMetrics registra métricas das chamadas
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient cria o cliente a partir da configuração
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout},
		empresaID: cfg.EmpresaClienteID,
		logger:    logger,
		tracer:    otel.GetTracerProvider().Tracer("dashboard.upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsBreakerFailure conta apenas falhas de transporte e respostas 5xx
func IsBreakerFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrUpstreamUnavailable) {
		return true
	}
	return apperrors.StatusCode(err) >= http.StatusInternalServerError
}

type call struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	body     interface{}
	auth     Auth
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// do executa a chamada e decodifica o JSON em out, quando informado
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		c.logger.Warn("resposta inválida da API de presença",
			zap.String("endpoint", cl.endpoint),
			zap.Error(err))
		return apperrors.New(http.StatusBadGateway, "Dados inválidos recebidos da API.", err)
	}
	return nil
}

// send aplica os interceptadores, passa pelo circuit breaker e normaliza erros
func (c *Client) send(ctx context.Context, cl call) (*response, error) {
	ctx, span := c.tracer.Start(ctx, "upstream "+cl.method+" "+cl.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", cl.method),
			attribute.String("http.route", cl.endpoint),
		),
	)
	defer span.End()

	start := time.Now()
	var resp *response

	exec := func(ctx context.Context) error {
		var err error
		resp, err = c.roundTrip(ctx, cl)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, exec)
	} else {
		err = exec(ctx)
	}

	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.status)
		span.SetAttributes(attribute.Int("http.status_code", resp.status))
	}
	if c.metrics != nil {
		c.metrics.UpstreamCompleted(cl.endpoint, cl.method, status, time.Since(start))
	}

	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			err = apperrors.New(http.StatusServiceUnavailable, MsgCircuitOpen, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("falha na chamada à API de presença",
			zap.String("method", cl.method),
			zap.String("endpoint", cl.endpoint),
			zap.String("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	c.logger.Debug("chamada à API de presença concluída",
		zap.String("method", cl.method),
		zap.String("endpoint", cl.endpoint),
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)))

	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, cl call) (*response, error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, apperrors.InternalServer("", fmt.Errorf("falha ao serializar corpo: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, apperrors.InternalServer("", err)
	}
	c.intercept(req, cl.auth)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Connection(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.Connection(err)
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return &response{status: httpResp.StatusCode}, apperrors.FromUpstream(httpResp.StatusCode, data)
	}

	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}, nil
}

// intercept adiciona os cabeçalhos comuns a toda chamada
func (c *Client) intercept(req *http.Request, auth Auth) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	}

	empresa := int64(auth.EmpresaID)
	if empresa == 0 {
		empresa = c.empresaID
	}
	if empresa > 0 {
		req.Header.Set(headerEmpresa, strconv.FormatInt(empresa, 10))
	}
}
