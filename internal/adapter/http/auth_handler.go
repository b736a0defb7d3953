package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/digitalsix/presenca-dashboard/internal/app/audit"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/infra/middleware"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/digitalsix/presenca-dashboard/pkg/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgLoginFailed = "Erro ao fazer login"

// LoginAPI autentica as credenciais na API de presença
type LoginAPI interface {
	Login(ctx context.Context, email, senha string) (*model.LoginResponse, error)
}

// AuthHandler atende login, logout e restauração de sessão
type AuthHandler struct {
	api      LoginAPI
	sessions *session.Service
	keys     *security.KeyManager
	audit    *audit.Service
	resp     *responder
	logger   *zap.Logger
}

// NewAuthHandler cria o handler de autenticação
func NewAuthHandler(api LoginAPI, sessions *session.Service, keys *security.KeyManager, auditSvc *audit.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		api:      api,
		sessions: sessions,
		keys:     keys,
		audit:    auditSvc,
		resp:     &responder{sessions: sessions, audit: auditSvc, logger: logger},
		logger:   logger,
	}
}

// LoginResponse é devolvida ao navegador após o login
type LoginResponse struct {
	Token     string      `json:"token"`
	User      *model.User `json:"user"`
	ExpiresIn int64       `json:"expiresIn"`
}

// Login autentica na API, cria a sessão e devolve o token do navegador
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Informe email e senha válidos"})
		return
	}

	out, err := h.api.Login(c.Request.Context(), req.Email, req.Senha)
	if err != nil {
		h.logger.Info("login recusado", zap.String("email", req.Email), zap.Error(err))
		c.JSON(apperrors.StatusCode(err), gin.H{"error": loginMessage(err)})
		return
	}

	user := out.User
	sess, err := h.sessions.Login(c.Request.Context(), &user, out.Token)
	if err != nil {
		h.resp.fail(c, apperrors.InternalServer("Erro ao criar sessão", err))
		return
	}

	token, err := h.keys.GenerateToken(sess.ID, user.ID.String(), user.TipoUsuario, h.sessions.TTL())
	if err != nil {
		_ = h.sessions.Clear(c.Request.Context(), sess.ID)
		h.resp.fail(c, apperrors.InternalServer("Erro ao gerar token", err))
		return
	}

	h.audit.Record(c.Request.Context(), &user, model.AuditLogin, "", c.ClientIP())
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		User:      &user,
		ExpiresIn: int64(h.sessions.TTL().Seconds()),
	})
}

// Logout encerra a sessão mesmo que a API não responda
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessionOf(c)
	if err := h.sessions.Logout(c.Request.Context(), sess.ID); err != nil {
		h.logger.Error("falha ao remover sessão no logout", zap.String("session_id", sess.ID), zap.Error(err))
	}

	h.audit.Record(c.Request.Context(), sess.User, model.AuditLogout, "", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Logout realizado com sucesso"})
}

// Me valida o token guardado em /auth/me e devolve o usuário atualizado
func (h *AuthHandler) Me(c *gin.Context) {
	current := sessionOf(c)

	sess, err := h.sessions.Restore(c.Request.Context(), current.ID)
	if err != nil {
		if errors.Is(err, session.ErrExpired) || errors.Is(err, session.ErrNotFound) {
			h.audit.Record(c.Request.Context(), current.User, model.AuditSessaoExpirada, "restauração", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    apperrors.MsgUnauthorized,
				"redirect": middleware.RedirectLogin,
			})
			return
		}
		h.resp.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      sess.User,
		"isAdmin":   sess.IsAdmin(),
		"isCliente": sess.IsCliente(),
	})
}

// loginMessage mostra a mensagem da API quando houver
func loginMessage(err error) string {
	if errors.Is(err, apperrors.ErrUpstreamUnavailable) {
		return apperrors.MsgConnection
	}
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgLoginFailed
}
