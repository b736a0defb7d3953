package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	"github.com/digitalsix/presenca-dashboard/pkg/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	tokenKeyPrefix = "auth_token:"
	userKeyPrefix  = "user_data:"
)

var (
	// ErrNotFound indica que a sessão não existe ou está incompleta
	ErrNotFound = errors.New("sessão não encontrada")
	// ErrExpired indica que o token da sessão foi recusado pela API
	ErrExpired = errors.New("sessão expirada")
)

// AuthAPI são as chamadas de autenticação usadas pela sessão
type AuthAPI interface {
	Me(ctx context.Context, auth upstream.Auth) (*model.User, error)
	Logout(ctx context.Context, auth upstream.Auth) error
}

// Session é o estado de autenticação de um navegador
type Session struct {
	ID    string      `json:"id"`
	User  *model.User `json:"user"`
	Token string      `json:"-"`
}

// IsAuthenticated é verdadeiro somente com usuário e token presentes
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.User != nil && s.Token != ""
}

// IsAdmin indica se o usuário da sessão é administrador
func (s *Session) IsAdmin() bool {
	return s != nil && s.User.IsAdmin()
}

// IsCliente indica se o usuário da sessão é cliente final
func (s *Session) IsCliente() bool {
	return s != nil && s.User.IsCliente()
}

// AuthHeader retorna o cabeçalho Authorization ou vazio sem token
func (s *Session) AuthHeader() string {
	if s == nil || s.Token == "" {
		return ""
	}
	return "Bearer " + s.Token
}

// Upstream retorna as credenciais usadas nas chamadas à API de presença
func (s *Session) Upstream() upstream.Auth {
	if s == nil {
		return upstream.Auth{}
	}
	auth := upstream.Auth{Token: s.Token}
	if s.User != nil && s.User.EmpresaID != nil {
		auth.EmpresaID = *s.User.EmpresaID
	}
	return auth
}

// Service guarda as sessões no cache sob auth_token:<sid> e user_data:<sid>
type Service struct {
	cache   cache.Cache
	api     AuthAPI
	ttl     time.Duration
	metrics *metrics.APIMetrics
	logger  *zap.Logger
	newID   func() string
}

// NewService cria o serviço de sessões
func NewService(c cache.Cache, api AuthAPI, ttl time.Duration, m *metrics.APIMetrics, logger *zap.Logger) *Service {
	return &Service{
		cache:   c,
		api:     api,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// TTL retorna a duração das sessões
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Login persiste usuário e token em uma nova sessão
func (s *Service) Login(ctx context.Context, user *model.User, token string) (*Session, error) {
	if user == nil || token == "" {
		return nil, errors.New("usuário e token são obrigatórios")
	}

	sess := &Session{ID: s.newID(), User: user, Token: token}
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}

	s.event("criada")
	s.logger.Info("sessão criada",
		zap.String("session_id", sess.ID),
		zap.String("user_id", user.ID.String()),
		zap.String("tipo_usuario", user.TipoUsuario))

	return sess, nil
}

// Get recupera a sessão; a ausência de qualquer uma das chaves resulta em ErrNotFound
func (s *Service) Get(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return nil, ErrNotFound
	}

	var token string
	found, err := s.cache.Get(ctx, tokenKeyPrefix+sid, &token)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler token da sessão: %w", err)
	}
	if !found || token == "" {
		return nil, ErrNotFound
	}

	var user model.User
	found, err = s.cache.Get(ctx, userKeyPrefix+sid, &user)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler usuário da sessão: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &Session{ID: sid, User: &user, Token: token}, nil
}

// Restore valida o token guardado em /auth/me. Qualquer falha limpa a sessão;
// sucesso atualiza os dados do usuário e renova o prazo.
func (s *Service) Restore(ctx context.Context, sid string) (*Session, error) {
	sess, err := s.Get(ctx, sid)
	if err != nil {
		return nil, err
	}

	user, err := s.api.Me(ctx, sess.Upstream())
	if err != nil {
		s.logger.Info("token da sessão recusado, limpando dados",
			zap.String("session_id", sid),
			zap.Error(err))
		if clearErr := s.Clear(ctx, sid); clearErr != nil {
			s.logger.Error("falha ao limpar sessão", zap.String("session_id", sid), zap.Error(clearErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrExpired, err)
	}

	if user.EmpresaID == nil && sess.User != nil {
		user.EmpresaID = sess.User.EmpresaID
	}
	sess.User = user
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}

	s.event("restaurada")
	return sess, nil
}

// Logout avisa a API e limpa a sessão independentemente do resultado da chamada
func (s *Service) Logout(ctx context.Context, sid string) error {
	sess, err := s.Get(ctx, sid)
	if err == nil && sess.Token != "" {
		if err := s.api.Logout(ctx, sess.Upstream()); err != nil {
			s.logger.Warn("falha ao encerrar token na API", zap.String("session_id", sid), zap.Error(err))
		}
	}

	return s.Clear(ctx, sid)
}

// Clear remove as duas chaves da sessão
func (s *Service) Clear(ctx context.Context, sid string) error {
	errToken := s.cache.Delete(ctx, tokenKeyPrefix+sid)
	errUser := s.cache.Delete(ctx, userKeyPrefix+sid)

	s.event("removida")
	if err := errors.Join(errToken, errUser); err != nil {
		return fmt.Errorf("falha ao remover sessão: %w", err)
	}
	return nil
}

func (s *Service) store(ctx context.Context, sess *Session) error {
	if err := s.cache.Set(ctx, tokenKeyPrefix+sess.ID, sess.Token, s.ttl); err != nil {
		return fmt.Errorf("falha ao salvar token da sessão: %w", err)
	}
	if err := s.cache.Set(ctx, userKeyPrefix+sess.ID, sess.User, s.ttl); err != nil {
		_ = s.cache.Delete(ctx, tokenKeyPrefix+sess.ID)
		return fmt.Errorf("falha ao salvar usuário da sessão: %w", err)
	}
	return nil
}

func (s *Service) event(name string) {
	if s.metrics != nil {
		s.metrics.SessionEvent(name)
	}
}
