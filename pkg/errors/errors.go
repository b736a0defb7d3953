package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Tipos de erro comuns
var (
	ErrNotFound            = errors.New("recurso não encontrado")
	ErrBadRequest          = errors.New("requisição inválida")
	ErrUnauthorized        = errors.New("não autorizado")
	ErrForbidden           = errors.New("acesso negado")
	ErrInternalServer      = errors.New("erro interno do servidor")
	ErrServiceUnavailable  = errors.New("serviço indisponível")
	ErrTimeout             = errors.New("tempo de espera excedido")
	ErrUpstreamUnavailable = errors.New("api de presença inacessível")
)

// Mensagens exibidas ao cliente final
const (
	MsgUnauthorized = "Acesso não autorizado. Entre em contato com o suporte."
	MsgForbidden    = "Acesso negado."
	MsgNotFound     = "Dados não encontrados para sua empresa."
	MsgServerError  = "Erro interno. Nosso time foi notificado."
	MsgConnection   = "Erro de conexão. Verifique sua internet."
	MsgUnknown      = "Erro desconhecido. Tente novamente."
)

// APIError representa um erro da API com informações adicionais
type APIError struct {
	Code        int         `json:"-"`
	Message     string      `json:"message"`
	Details     interface{} `json:"details,omitempty"`
	OriginalErr error       `json:"-"`
}

// Error implementa a interface error
func (e *APIError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.OriginalErr)
	}
	return e.Message
}

// Unwrap permite usar errors.Is e errors.As
func (e *APIError) Unwrap() error {
	return e.OriginalErr
}

// New cria um novo APIError
func New(code int, message string, err error) *APIError {
	return &APIError{
		Code:        code,
		Message:     message,
		OriginalErr: err,
	}
}

// WithDetails adiciona detalhes ao erro
func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

// NotFound cria um erro 404
func NotFound(resource string, err error) *APIError {
	message := fmt.Sprintf("%s não encontrado", resource)
	return New(http.StatusNotFound, message, err)
}

// BadRequest cria um erro 400
func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, message, err)
}

// Unauthorized cria um erro 401
func Unauthorized(message string, err error) *APIError {
	if message == "" {
		message = "Autenticação necessária"
	}
	return New(http.StatusUnauthorized, message, err)
}

// Forbidden cria um erro 403
func Forbidden(message string, err error) *APIError {
	if message == "" {
		message = "Acesso negado"
	}
	return New(http.StatusForbidden, message, err)
}

// InternalServer cria um erro 500
func InternalServer(message string, err error) *APIError {
	if message == "" {
		message = "Erro interno do servidor"
	}
	return New(http.StatusInternalServerError, message, err)
}

// FromUpstream converte uma resposta de erro da API de presença em APIError.
// O corpo é inspecionado em busca de {"error": "..."}.
func FromUpstream(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	upstreamMsg := payload.Error
	if upstreamMsg == "" {
		upstreamMsg = payload.Message
	}

	var sentinel error
	switch status {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	default:
		if status >= 500 {
			sentinel = ErrInternalServer
		}
	}

	raw := strings.TrimSpace(string(body))
	if len(raw) > 512 {
		raw = raw[:512]
	}
	cause := fmt.Errorf("HTTP %d: %s", status, raw)
	if sentinel != nil {
		cause = fmt.Errorf("%w (HTTP %d: %s)", sentinel, status, raw)
	}

	return New(status, upstreamMsg, cause)
}

// Connection cria o erro de falha de transporte (sem resposta da API)
func Connection(err error) *APIError {
	return New(http.StatusBadGateway, MsgConnection, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err))
}

// IsUnauthorized indica se o erro representa uma resposta 401
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return true
	}
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode retorna o código HTTP associado ao erro
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return apiErr.Code
	}
	if errors.Is(err, ErrUpstreamUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// UserMessage formata a mensagem amigável exibida no alerta do painel
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrUpstreamUnavailable) {
		return MsgConnection
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return MsgUnknown
	}

	switch apiErr.Code {
	case http.StatusUnauthorized:
		return MsgUnauthorized
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusInternalServerError:
		return MsgServerError
	}

	if apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgUnknown
}
