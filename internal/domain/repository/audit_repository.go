package repository

import (
	"context"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
)

// Limites da listagem de auditoria
const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 500
)

// AuditRepository define a interface para armazenamento dos eventos de auditoria
type AuditRepository interface {
	// Record grava um evento
	Record(ctx context.Context, event *model.AuditEvent) error

	// List retorna os eventos mais recentes primeiro
	List(ctx context.Context, limit int) ([]model.AuditEvent, error)

	// Ping verifica a conexão com o armazenamento
	Ping(ctx context.Context) error
}
