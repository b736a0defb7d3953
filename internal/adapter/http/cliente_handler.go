package http

import (
	"net/http"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/export"
	"github.com/digitalsix/presenca-dashboard/internal/app/audit"
	"github.com/digitalsix/presenca-dashboard/internal/app/dashboard"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClienteHandler atende as telas da empresa cliente
type ClienteHandler struct {
	svc     *dashboard.Service
	exports *export.Generator
	audit   *audit.Service
	resp    *responder
	logger  *zap.Logger
}

// NewClienteHandler cria o handler das telas do cliente
func NewClienteHandler(svc *dashboard.Service, exports *export.Generator, sessions *session.Service, auditSvc *audit.Service, logger *zap.Logger) *ClienteHandler {
	return &ClienteHandler{
		svc:     svc,
		exports: exports,
		audit:   auditSvc,
		resp:    &responder{sessions: sessions, audit: auditSvc, logger: logger},
		logger:  logger,
	}
}

// Dashboard retorna estatísticas, resumo e aulas por mês
func (h *ClienteHandler) Dashboard(c *gin.Context) {
	ov, err := h.svc.Overview(c.Request.Context(), sessionOf(c))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// Stats repassa as estatísticas da empresa
func (h *ClienteHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), sessionOf(c))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Aulas lista as aulas com status; ?busca= filtra por descrição ou professor
func (h *ClienteHandler) Aulas(c *gin.Context) {
	page, err := h.svc.Aulas(c.Request.Context(), sessionOf(c), c.Query("busca"))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Participantes lista os presentes em uma aula
func (h *ClienteHandler) Participantes(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	ps, err := h.svc.Participantes(c.Request.Context(), sessionOf(c), id)
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ParticipantesResponse{Participantes: ps})
}

// Funcionarios lista os funcionários; ?busca= e ?unidade= filtram
func (h *ClienteHandler) Funcionarios(c *gin.Context) {
	page, err := h.svc.Funcionarios(c.Request.Context(), sessionOf(c), c.Query("busca"), c.Query("unidade"))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Graficos devolve os pontos do gráfico; ?agrupamento= escolhe o eixo
func (h *ClienteHandler) Graficos(c *gin.Context) {
	agrupamento := c.DefaultQuery("agrupamento", dashboard.GroupMes)
	buckets, err := h.svc.Charts(c.Request.Context(), sessionOf(c), agrupamento)
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"agrupamento": agrupamento,
		"dados":       buckets,
	})
}

// Relatorios repassa os relatórios mensais; ?periodo= em meses
func (h *ClienteHandler) Relatorios(c *gin.Context) {
	raw, err := h.svc.Relatorios(c.Request.Context(), sessionOf(c), c.Query("periodo"))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// Evolucao repassa a evolução temporal
func (h *ClienteHandler) Evolucao(c *gin.Context) {
	raw, err := h.svc.Evolucao(c.Request.Context(), sessionOf(c))
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// ExportAulas gera o histórico de aulas filtrado; ?format=xlsx|pdf
func (h *ClienteHandler) ExportAulas(c *gin.Context) {
	sess := sessionOf(c)
	page, err := h.svc.Aulas(c.Request.Context(), sess, c.Query("busca"))
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	file, err := h.exports.Aulas(page.Aulas, c.DefaultQuery("format", export.FormatXLSX))
	h.sendExport(c, sess, file, err)
}

// ExportAula gera os detalhes de uma aula com seus participantes
func (h *ClienteHandler) ExportAula(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	sess := sessionOf(c)
	aula, err := h.svc.Aula(c.Request.Context(), sess, id)
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	ps, err := h.svc.Participantes(c.Request.Context(), sess, id)
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	file, err := h.exports.AulaDetalhes(*aula, ps, c.DefaultQuery("format", export.FormatXLSX))
	h.sendExport(c, sess, file, err)
}

// ExportFuncionarios gera a lista de funcionários com os filtros aplicados
func (h *ClienteHandler) ExportFuncionarios(c *gin.Context) {
	sess := sessionOf(c)
	filtros := export.Filtros{Termo: c.Query("busca"), Unidade: c.Query("unidade")}

	page, err := h.svc.Funcionarios(c.Request.Context(), sess, filtros.Termo, filtros.Unidade)
	if err != nil {
		h.resp.fail(c, err)
		return
	}

	funcs := make([]model.Funcionario, len(page.Funcionarios))
	for i, f := range page.Funcionarios {
		funcs[i] = f.Funcionario
	}

	file, err := h.exports.Funcionarios(funcs, filtros, c.DefaultQuery("format", export.FormatXLSX))
	h.sendExport(c, sess, file, err)
}

// ExportRemoto repassa o relatório gerado pela API (/cliente/export/:tipo?format=pdf|csv)
func (h *ClienteHandler) ExportRemoto(c *gin.Context) {
	sess := sessionOf(c)
	file, err := h.svc.RemoteExport(c.Request.Context(), sess, c.Param("tipo"), c.DefaultQuery("format", "pdf"))
	h.sendExport(c, sess, file, err)
}

func (h *ClienteHandler) sendExport(c *gin.Context, sess *session.Session, file *model.ExportFile, err error) {
	if err != nil {
		h.resp.fail(c, err)
		return
	}
	h.audit.Record(c.Request.Context(), sess.User, model.AuditExport, file.Filename, c.ClientIP())
	attachment(c, file)
}
