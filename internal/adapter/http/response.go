package http

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/digitalsix/presenca-dashboard/internal/app/audit"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/infra/middleware"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionClearer remove a sessão do navegador
type SessionClearer interface {
	Clear(ctx context.Context, sid string) error
}

// responder converte erros no corpo {"error", "retry"} exibido pelo painel.
// Um 401 da API encerra a sessão e manda o navegador para o login.
type responder struct {
	sessions SessionClearer
	audit    *audit.Service
	logger   *zap.Logger
}

func (r *responder) fail(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	body := gin.H{
		"error": apperrors.UserMessage(err),
		"retry": true,
	}

	if apperrors.IsUnauthorized(err) {
		status = http.StatusUnauthorized
		body["retry"] = false
		body["redirect"] = middleware.RedirectLogin
		r.expire(c)
	}

	fields := []zap.Field{
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		r.logger.Error("falha ao atender requisição", fields...)
	} else {
		r.logger.Debug("requisição recusada", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// expire limpa a sessão corrente após um 401 da API
func (r *responder) expire(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return
	}

	if err := r.sessions.Clear(c.Request.Context(), sess.ID); err != nil {
		r.logger.Error("falha ao limpar sessão expirada", zap.String("session_id", sess.ID), zap.Error(err))
	}
	r.audit.Record(c.Request.Context(), sess.User, model.AuditSessaoExpirada, c.FullPath(), c.ClientIP())
}

// attachment envia um arquivo para download
func attachment(c *gin.Context, file *model.ExportFile) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	c.Header("Content-Length", strconv.Itoa(len(file.Data)))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func parseID(c *gin.Context, name string) (model.ID, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest("Identificador inválido: "+c.Param(name), err)
	}
	return model.ID(id), nil
}

// sessionOf retorna a sessão colocada por middleware.Authenticate
func sessionOf(c *gin.Context) *session.Session {
	sess, _ := middleware.SessionFrom(c)
	return sess
}
