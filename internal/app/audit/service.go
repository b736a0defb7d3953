package audit

import (
	"context"
	"strings"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/domain/repository"
	"go.uber.org/zap"
)

// Service registra eventos de auditoria. Falhas de gravação só geram log.
type Service struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewService cria o serviço de auditoria; repo nil desativa a gravação
func NewService(repo repository.AuditRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Enabled indica se há armazenamento configurado
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record grava a ação do usuário
func (s *Service) Record(ctx context.Context, user *model.User, acao, detalhe, ip string) {
	if !s.Enabled() {
		return
	}

	event := &model.AuditEvent{
		Acao:    acao,
		Detalhe: truncate(detalhe, 500),
		IP:      ip,
	}
	if user != nil {
		event.UserID = user.ID.String()
		event.Email = user.Email
	}

	if err := s.repo.Record(ctx, event); err != nil {
		s.logger.Warn("Falha ao registrar evento de auditoria",
			zap.String("acao", acao),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}

// List retorna os eventos mais recentes
func (s *Service) List(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	if !s.Enabled() {
		return []model.AuditEvent{}, nil
	}
	return s.repo.List(ctx, limit)
}

// Ping verifica o armazenamento; sem armazenamento não há o que verificar
func (s *Service) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.Ping(ctx)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
