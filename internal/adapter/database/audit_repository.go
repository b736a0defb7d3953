package database

import (
	"context"
	"fmt"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditRepository implementa repository.AuditRepository usando GORM
type AuditRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository cria um repositório de auditoria
func NewAuditRepository(db *gorm.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Record grava um evento de auditoria
func (r *AuditRepository) Record(ctx context.Context, event *model.AuditEvent) error {
	if event == nil || event.Acao == "" {
		return fmt.Errorf("evento de auditoria sem ação")
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("falha ao gravar evento de auditoria: %w", err)
	}
	return nil
}

// List retorna até limit eventos, do mais recente para o mais antigo
func (r *AuditRepository) List(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	switch {
	case limit <= 0:
		limit = repository.DefaultAuditLimit
	case limit > repository.MaxAuditLimit:
		limit = repository.MaxAuditLimit
	}

	var events []model.AuditEvent
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("falha ao listar eventos de auditoria: %w", err)
	}
	return events, nil
}

// Ping verifica a conexão com o banco
func (r *AuditRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
