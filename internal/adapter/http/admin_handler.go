package http

import (
	"net/http"
	"strconv"

	"github.com/digitalsix/presenca-dashboard/internal/app/audit"
	"github.com/digitalsix/presenca-dashboard/internal/app/dashboard"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler atende as rotas administrativas
type AdminHandler struct {
	svc    *dashboard.Service
	audit  *audit.Service
	resp   *responder
	logger *zap.Logger
}

// NewAdminHandler cria o handler administrativo
func NewAdminHandler(svc *dashboard.Service, sessions *session.Service, auditSvc *audit.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		audit:  auditSvc,
		resp:   &responder{sessions: sessions, audit: auditSvc, logger: logger},
		logger: logger,
	}
}

// Stats repassa as estatísticas globais
func (h *AdminHandler) Stats(c *gin.Context) {
	raw, err := h.svc.AdminStats(c.Request.Context(), sessionOf(c))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// ListUsuarios lista os usuários cadastrados
func (h *AdminHandler) ListUsuarios(c *gin.Context) {
	raw, err := h.svc.AdminUsuarios(c.Request.Context(), sessionOf(c))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// CreateUsuario cadastra um usuário
func (h *AdminHandler) CreateUsuario(c *gin.Context) {
	var in model.UsuarioInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.resp.fail(c, apperrors.BadRequest("Dados inválidos: "+err.Error(), err))
		return
	}

	sess := sessionOf(c)
	raw, err := h.svc.CreateUsuario(c.Request.Context(), sess, in)
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), sess.User, model.AuditUsuario, "criado: "+in.Email, c.ClientIP())
	c.Data(http.StatusCreated, "application/json; charset=utf-8", raw)
}

// UpdateUsuario altera um usuário
func (h *AdminHandler) UpdateUsuario(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	var in model.UsuarioInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.resp.fail(c, apperrors.BadRequest("Dados inválidos: "+err.Error(), err))
		return
	}

	sess := sessionOf(c)
	raw, err := h.svc.UpdateUsuario(c.Request.Context(), sess, id, in)
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), sess.User, model.AuditUsuario, "alterado: "+id.String(), c.ClientIP())
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// DeleteUsuario remove um usuário
func (h *AdminHandler) DeleteUsuario(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	sess := sessionOf(c)
	if err := h.svc.DeleteUsuario(c.Request.Context(), sess, id); err != nil {
		h.resp.fail(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), sess.User, model.AuditUsuario, "removido: "+id.String(), c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Usuário removido com sucesso"})
}

// Auditoria lista os eventos de auditoria mais recentes; ?limit= limita a quantidade
func (h *AdminHandler) Auditoria(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.resp.fail(c, apperrors.BadRequest("limit deve ser um número positivo", err))
			return
		}
		limit = n
	}

	events, err := h.audit.List(c.Request.Context(), limit)
	if err != nil {
		h.resp.fail(c, apperrors.InternalServer("Erro ao consultar auditoria", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"eventos": events,
		"total":   len(events),
	})
}

// LimparCache descarta os dados em cache de todos os usuários
func (h *AdminHandler) LimparCache(c *gin.Context) {
	if err := h.svc.ClearCache(c.Request.Context()); err != nil {
		h.resp.fail(c, apperrors.InternalServer("Erro ao limpar cache", err))
		return
	}

	h.logger.Info("cache de dados limpo", zap.String("by", sessionOf(c).User.Email))
	c.JSON(http.StatusOK, gin.H{"message": "Cache limpo com sucesso"})
}
