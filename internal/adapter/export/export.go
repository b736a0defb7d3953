// Package export gera os relatórios em Excel e PDF baixados pelo painel
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/app/insights"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"go.uber.org/zap"
)

// Formatos suportados
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"

	dateTimeLayout = "02/01/2006 15:04:05"
	dateLayout     = "02/01/2006"
)

// Valores exibidos quando o campo está ausente
const (
	DefaultNA    = "N/A"
	DefaultNunca = "Nunca"
)

// Filtros descreve os filtros aplicados à lista de funcionários
type Filtros struct {
	Termo   string
	Unidade string
}

func (f Filtros) empty() bool {
	return f.Termo == "" && f.Unidade == ""
}

func (f Filtros) String() string {
	var b strings.Builder
	b.WriteString("Filtros aplicados: ")
	if f.Termo != "" {
		fmt.Fprintf(&b, "Busca: %q ", f.Termo)
	}
	if f.Unidade != "" {
		fmt.Fprintf(&b, "Unidade: %q", f.Unidade)
	}
	return strings.TrimSpace(b.String())
}

// column é uma coluna de tabela com larguras para planilha (caracteres) e PDF (mm)
type column struct {
	title      string
	sheetWidth float64
	pdfWidth   float64
	center     bool
}

// report é a representação intermediária comum aos dois formatos
type report struct {
	sheet    string
	title    string
	subtitle []string
	columns  []column
	rows     [][]interface{}
	// info são linhas chave/valor exibidas antes da tabela
	info [][2]string
}

// Generator monta os arquivos de exportação no fuso configurado
type Generator struct {
	loc     *time.Location
	now     func() time.Time
	metrics *metrics.APIMetrics
	logger  *zap.Logger
}

// NewGenerator cria um gerador de relatórios
func NewGenerator(loc *time.Location, m *metrics.APIMetrics, logger *zap.Logger) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		loc:     loc,
		now:     time.Now,
		metrics: m,
		logger:  logger,
	}
}

// Aulas gera o histórico de aulas (historico_aulas.xlsx|pdf)
func (g *Generator) Aulas(aulas []model.Aula, format string) (*model.ExportFile, error) {
	rows := make([][]interface{}, len(aulas))
	for i, a := range aulas {
		rows[i] = []interface{}{
			g.dateTime(a.DataHora),
			a.Descricao,
			orDefault(a.ProfessorNome, DefaultNA),
			a.NumPresencas.Int(),
			insights.StatusLabel(a.Status),
		}
	}

	r := report{
		sheet:    "Aulas",
		title:    "Relatório de Aulas",
		subtitle: []string{"Gerado em: " + g.now().In(g.loc).Format(dateTimeLayout)},
		columns: []column{
			{title: "Data/Hora", sheetWidth: 20, pdfWidth: 38},
			{title: "Descrição", sheetWidth: 35, pdfWidth: 62},
			{title: "Professor", sheetWidth: 25, pdfWidth: 40},
			{title: "Presenças", sheetWidth: 12, pdfWidth: 20, center: true},
			{title: "Status", sheetWidth: 15, pdfWidth: 30},
		},
		rows: rows,
	}
	return g.render("aulas", "historico_aulas", r, format)
}

// Funcionarios gera a lista de funcionários filtrada (funcionarios_DD-MM-YYYY.xlsx|pdf)
func (g *Generator) Funcionarios(funcs []model.Funcionario, filtros Filtros, format string) (*model.ExportFile, error) {
	pdfLayout := format == FormatPDF

	rows := make([][]interface{}, len(funcs))
	for i, f := range funcs {
		row := []interface{}{orDefault(f.NfcTagID, DefaultNA), f.NomeCompleto}
		if !pdfLayout {
			row = append(row, f.Email)
		}
		row = append(row,
			orDefault(f.Cargo, insights.LabelNaoInformado),
			orDefault(f.Unidade, insights.LabelPrincipal),
			f.TotalPresencas.Int(),
			g.date(f.UltimaParticipacao),
		)
		rows[i] = row
	}

	columns := []column{
		{title: "NFC Tag ID", sheetWidth: 15, pdfWidth: 25},
		{title: "Nome", sheetWidth: 25, pdfWidth: 48},
	}
	if !pdfLayout {
		columns = append(columns, column{title: "Email", sheetWidth: 30})
	}
	columns = append(columns,
		column{title: "Cargo", sheetWidth: 20, pdfWidth: 36},
		column{title: "Unidade", sheetWidth: 15, pdfWidth: 28},
		column{title: "Participações", sheetWidth: 12, pdfWidth: 23, center: true},
		column{title: "Última Participação", sheetWidth: 18, pdfWidth: 30, center: true},
	)

	r := report{
		sheet:   "Funcionários",
		title:   "Lista de Funcionários",
		columns: columns,
		rows:    rows,
	}
	if !filtros.empty() {
		r.subtitle = []string{filtros.String()}
	}

	name := "funcionarios_" + g.now().In(g.loc).Format("02-01-2006")
	return g.render("funcionarios", name, r, format)
}

// AulaDetalhes gera os detalhes de uma aula com seus participantes (aula_<id>_detalhes.xlsx|pdf)
func (g *Generator) AulaDetalhes(aula model.Aula, participantes []model.Participante, format string) (*model.ExportFile, error) {
	if len(participantes) == 0 {
		return nil, apperrors.BadRequest("A aula não possui participantes para exportar", nil)
	}

	rows := make([][]interface{}, len(participantes))
	for i, p := range participantes {
		rows[i] = []interface{}{
			p.NomeCompleto,
			orDefault(p.Cargo, DefaultNA),
			orDefault(p.NfcTagID, DefaultNA),
		}
	}

	r := report{
		sheet: "Detalhes da Aula",
		title: "Detalhes da Aula: " + aula.Descricao,
		info: [][2]string{
			{"Descrição:", aula.Descricao},
			{"Data:", g.dateTime(aula.DataHora)},
			{"Professor:", orDefault(aula.ProfessorNome, DefaultNA)},
			{"Total de Participantes:", strconv.Itoa(len(participantes))},
		},
		columns: []column{
			{title: "Nome", sheetWidth: 30, pdfWidth: 80},
			{title: "Cargo", sheetWidth: 20, pdfWidth: 60},
			{title: "NFC ID", sheetWidth: 15, pdfWidth: 50},
		},
		rows: rows,
	}
	return g.render("aula_detalhes", fmt.Sprintf("aula_%s_detalhes", aula.ID), r, format)
}

func (g *Generator) render(kind, basename string, r report, format string) (*model.ExportFile, error) {
	var (
		data        []byte
		contentType string
		err         error
	)

	switch format {
	case FormatXLSX:
		data, err = renderXLSX(r)
		contentType = contentTypeXLSX
	case FormatPDF:
		data, err = renderPDF(r)
		contentType = contentTypePDF
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("formato de exportação inválido: %s", format), nil)
	}
	if err != nil {
		g.logger.Error("falha ao gerar relatório",
			zap.String("kind", kind),
			zap.String("format", format),
			zap.Error(err))
		return nil, apperrors.InternalServer("Erro ao gerar relatório", err)
	}

	if g.metrics != nil {
		g.metrics.ExportGenerated(kind, format)
	}

	return &model.ExportFile{
		Filename:    basename + "." + format,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (g *Generator) dateTime(ts model.Timestamp) string {
	if ts.IsZero() {
		return DefaultNA
	}
	return ts.In(g.loc).Format(dateTimeLayout)
}

func (g *Generator) date(ts model.Timestamp) string {
	if ts.IsZero() {
		return DefaultNunca
	}
	return ts.In(g.loc).Format(dateLayout)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
