package model

import "time"

// Ações registradas na auditoria
const (
	AuditLogin          = "login"
	AuditLogout         = "logout"
	AuditSessaoExpirada = "sessao_expirada"
	AuditExport         = "export"
	AuditUsuario        = "usuario"
)

// AuditEvent é um evento de auditoria gravado pelo painel
type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;size:64" json:"user_id"`
	Email     string    `gorm:"size:150" json:"email"`
	Acao      string    `gorm:"index;size:40;not null" json:"acao"`
	Detalhe   string    `gorm:"size:500" json:"detalhe"`
	IP        string    `gorm:"size:64" json:"ip,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName define o nome da tabela
func (AuditEvent) TableName() string {
	return "audit_events"
}
