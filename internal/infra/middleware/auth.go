package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/digitalsix/presenca-dashboard/pkg/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Destinos de redirecionamento devolvidos ao navegador
const (
	RedirectLogin = "/login"
	RedirectHome  = "/"
)

// TokenVerifier valida o token de sessão do navegador
type TokenVerifier interface {
	VerifyToken(token string) (*security.Claims, error)
}

// SessionStore recupera sessões pelo id
type SessionStore interface {
	Get(ctx context.Context, sid string) (*session.Session, error)
}

// AuthMiddleware resolve a sessão a partir do token Bearer
type AuthMiddleware struct {
	tokens   TokenVerifier
	sessions SessionStore
	logger   *zap.Logger
}

// NewAuthMiddleware cria uma nova instância do middleware de autenticação
func NewAuthMiddleware(tokens TokenVerifier, sessions SessionStore, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate exige uma sessão válida; sem ela responde 401 com redirecionamento para o login
func (m *AuthMiddleware) Authenticate(c *gin.Context) {
	tokenString, ok := BearerToken(c.GetHeader("Authorization"))
	if !ok {
		unauthorized(c)
		return
	}

	claims, err := m.tokens.VerifyToken(tokenString)
	if err != nil {
		unauthorized(c)
		return
	}

	sess, err := m.sessions.Get(c.Request.Context(), claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			unauthorized(c)
			return
		}
		m.logger.Error("falha ao carregar sessão",
			zap.String("session_id", claims.SessionID),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": apperrors.MsgServerError,
			"retry": true,
		})
		return
	}

	if sess.User == nil || sess.User.ID.String() != claims.UserID {
		m.logger.Warn("token não corresponde ao usuário da sessão", zap.String("session_id", claims.SessionID))
		unauthorized(c)
		return
	}

	SetSession(c, sess)
	c.Next()
}

// RequireAdmin permite apenas administradores; deve ser usado após Authenticate
func (m *AuthMiddleware) RequireAdmin(c *gin.Context) {
	sess, ok := SessionFrom(c)
	if !ok {
		unauthorized(c)
		return
	}

	if !sess.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    apperrors.MsgForbidden,
			"redirect": RedirectHome,
		})
		return
	}

	c.Next()
}

// BearerToken extrai o token do cabeçalho Authorization
func BearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    apperrors.MsgUnauthorized,
		"redirect": RedirectLogin,
	})
}
