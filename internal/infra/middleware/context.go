package middleware

import (
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/gin-gonic/gin"
)

const sessionContextKey = "session"

// SetSession guarda a sessão autenticada no contexto da requisição
func SetSession(c *gin.Context, sess *session.Session) {
	c.Set(sessionContextKey, sess)
}

// SessionFrom recupera a sessão guardada por Authenticate
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}
