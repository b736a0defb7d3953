package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/app/insights"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/pkg/cache"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const dataKeyPrefix = "data:"

// Agrupamentos aceitos pelos gráficos
const (
	GroupMes                  = "mes"
	GroupUnidade              = "unidade"
	GroupDepartamento         = "departamento"
	GroupPresencaUnidade      = "presenca_unidade"
	GroupPresencaDepartamento = "presenca_departamento"
)

// DataSource são as leituras e operações da API de presença usadas pelo painel
type DataSource interface {
	Stats(ctx context.Context, auth upstream.Auth) (*model.Stats, error)
	Aulas(ctx context.Context, auth upstream.Auth) ([]model.Aula, error)
	Funcionarios(ctx context.Context, auth upstream.Auth) ([]model.Funcionario, error)
	Participantes(ctx context.Context, auth upstream.Auth, aulaID model.ID) ([]model.Participante, error)
	Relatorios(ctx context.Context, auth upstream.Auth, periodo string) (json.RawMessage, error)
	Evolucao(ctx context.Context, auth upstream.Auth) (json.RawMessage, error)
	Export(ctx context.Context, auth upstream.Auth, tipo, formato string) (*model.ExportFile, error)
	AdminUsuarios(ctx context.Context, auth upstream.Auth) (json.RawMessage, error)
	AdminStats(ctx context.Context, auth upstream.Auth) (json.RawMessage, error)
	CreateUsuario(ctx context.Context, auth upstream.Auth, in model.UsuarioInput) (json.RawMessage, error)
	UpdateUsuario(ctx context.Context, auth upstream.Auth, id model.ID, in model.UsuarioInput) (json.RawMessage, error)
	DeleteUsuario(ctx context.Context, auth upstream.Auth, id model.ID) error
}

// Overview é a tela inicial: estatísticas e aulas buscadas em paralelo
type Overview struct {
	Stats  *model.Stats          `json:"stats"`
	Resumo insights.AulasSummary `json:"resumo"`
	PorMes []insights.Bucket     `json:"porMes"`
	Aulas  []model.Aula          `json:"aulas"`
}

// AulasPage é a listagem de aulas com resumo
type AulasPage struct {
	Aulas  []model.Aula          `json:"aulas"`
	Resumo insights.AulasSummary `json:"resumo"`
}

// FuncionarioView é o funcionário acompanhado do nível de engajamento
type FuncionarioView struct {
	model.Funcionario
	Engajamento string `json:"engajamento"`
}

// FuncionariosPage é a listagem de funcionários com resumo e unidades disponíveis
type FuncionariosPage struct {
	Funcionarios []FuncionarioView            `json:"funcionarios"`
	Resumo       insights.FuncionariosSummary `json:"resumo"`
	Unidades     []string                     `json:"unidades"`
}

// Service orquestra as chamadas à API e os agregadores de cada tela
type Service struct {
	api            DataSource
	cache          cache.Cache
	classifier     insights.Classifier
	loc            *time.Location
	dataTTL        time.Duration
	concurrency    int
	defaultPeriodo string
	now            func() time.Time
	logger         *zap.Logger
}

// NewService cria o serviço do painel
func NewService(api DataSource, c cache.Cache, cfg config.DashboardConfig, logger *zap.Logger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("fuso horário inválido: %w", err)
	}
	if c == nil {
		c = &cache.NoOpCache{}
	}

	concurrency := cfg.ParticipantesConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	periodo := cfg.DefaultPeriodo
	if periodo == "" {
		periodo = "6"
	}

	return &Service{
		api:            api,
		cache:          c,
		classifier:     insights.Classifier{Duration: cfg.ClassDuration},
		loc:            loc,
		dataTTL:        cfg.DataCacheTTL,
		concurrency:    concurrency,
		defaultPeriodo: periodo,
		now:            time.Now,
		logger:         logger,
	}, nil
}

// Location retorna o fuso usado para exibir datas
func (s *Service) Location() *time.Location {
	return s.loc
}

// Overview busca estatísticas e aulas concorrentemente; qualquer falha cancela a outra
func (s *Service) Overview(ctx context.Context, sess *session.Session) (*Overview, error) {
	var (
		stats *model.Stats
		aulas []model.Aula
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.api.Stats(gctx, sess.Upstream())
		return err
	})
	g.Go(func() error {
		var err error
		aulas, err = s.aulas(gctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Overview{
		Stats:  stats,
		Resumo: insights.SummarizeAulas(aulas),
		PorMes: insights.GroupByMonth(aulas),
		Aulas:  aulas,
	}, nil
}

// Stats retorna as estatísticas da empresa
func (s *Service) Stats(ctx context.Context, sess *session.Session) (*model.Stats, error) {
	return s.api.Stats(ctx, sess.Upstream())
}

// Aulas retorna as aulas decoradas com status e filtradas pelo termo.
// O resumo considera todas as aulas da empresa.
func (s *Service) Aulas(ctx context.Context, sess *session.Session, termo string) (*AulasPage, error) {
	aulas, err := s.aulas(ctx, sess)
	if err != nil {
		return nil, err
	}

	return &AulasPage{
		Aulas:  insights.FilterAulas(aulas, termo),
		Resumo: insights.SummarizeAulas(aulas),
	}, nil
}

// Aula localiza uma aula da empresa pelo id
func (s *Service) Aula(ctx context.Context, sess *session.Session, id model.ID) (*model.Aula, error) {
	aulas, err := s.aulas(ctx, sess)
	if err != nil {
		return nil, err
	}
	for i := range aulas {
		if aulas[i].ID == id {
			return &aulas[i], nil
		}
	}
	return nil, apperrors.NotFound("Aula", nil)
}

// Participantes retorna os participantes de uma aula
func (s *Service) Participantes(ctx context.Context, sess *session.Session, id model.ID) ([]model.Participante, error) {
	return s.api.Participantes(ctx, sess.Upstream(), id)
}

// Funcionarios retorna os funcionários filtrados com engajamento, resumo e unidades
func (s *Service) Funcionarios(ctx context.Context, sess *session.Session, termo, unidade string) (*FuncionariosPage, error) {
	funcs, err := s.funcionarios(ctx, sess)
	if err != nil {
		return nil, err
	}

	filtered := insights.FilterFuncionarios(funcs, termo, unidade)
	views := make([]FuncionarioView, len(filtered))
	for i, f := range filtered {
		views[i] = FuncionarioView{Funcionario: f, Engajamento: insights.EngagementLevel(f.TotalPresencas.Int())}
	}

	return &FuncionariosPage{
		Funcionarios: views,
		Resumo:       insights.SummarizeFuncionarios(funcs),
		Unidades:     insights.Unidades(funcs),
	}, nil
}

// Charts monta os pontos do gráfico para o agrupamento pedido
func (s *Service) Charts(ctx context.Context, sess *session.Session, agrupamento string) ([]insights.Bucket, error) {
	switch agrupamento {
	case GroupMes, "":
		aulas, err := s.aulas(ctx, sess)
		if err != nil {
			return nil, err
		}
		return insights.GroupByMonth(aulas), nil

	case GroupUnidade, GroupDepartamento:
		funcs, err := s.funcionarios(ctx, sess)
		if err != nil {
			return nil, err
		}
		if agrupamento == GroupUnidade {
			return insights.GroupByUnit(funcs), nil
		}
		return insights.GroupByDepartment(funcs), nil

	case GroupPresencaUnidade, GroupPresencaDepartamento:
		aulas, err := s.aulas(ctx, sess)
		if err != nil {
			return nil, err
		}
		participantes, err := s.participantesDe(ctx, sess, aulas)
		if err != nil {
			return nil, err
		}
		attr := insights.ByUnit
		if agrupamento == GroupPresencaDepartamento {
			attr = insights.ByDepartment
		}
		return insights.GroupAttendanceBy(aulas, participantes, attr), nil
	}

	return nil, apperrors.BadRequest(fmt.Sprintf("agrupamento inválido: %s", agrupamento), nil)
}

// Relatorios busca os relatórios mensais; período vazio usa o padrão configurado
func (s *Service) Relatorios(ctx context.Context, sess *session.Session, periodo string) (json.RawMessage, error) {
	if periodo == "" {
		periodo = s.defaultPeriodo
	}
	if n, err := strconv.Atoi(periodo); err != nil || n <= 0 {
		return nil, apperrors.BadRequest("período deve ser um número de meses", err)
	}
	return s.api.Relatorios(ctx, sess.Upstream(), periodo)
}

// Evolucao busca os dados de evolução temporal
func (s *Service) Evolucao(ctx context.Context, sess *session.Session) (json.RawMessage, error) {
	return s.api.Evolucao(ctx, sess.Upstream())
}

// RemoteExport repassa um relatório gerado pela API
func (s *Service) RemoteExport(ctx context.Context, sess *session.Session, tipo, formato string) (*model.ExportFile, error) {
	switch tipo {
	case "geral", "funcionarios", "aulas":
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("tipo de relatório inválido: %s", tipo), nil)
	}
	switch formato {
	case "pdf", "csv":
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("formato inválido: %s", formato), nil)
	}
	return s.api.Export(ctx, sess.Upstream(), tipo, formato)
}

// AdminStats busca as estatísticas globais
func (s *Service) AdminStats(ctx context.Context, sess *session.Session) (json.RawMessage, error) {
	return s.api.AdminStats(ctx, sess.Upstream())
}

// AdminUsuarios lista os usuários
func (s *Service) AdminUsuarios(ctx context.Context, sess *session.Session) (json.RawMessage, error) {
	return s.api.AdminUsuarios(ctx, sess.Upstream())
}

// CreateUsuario valida e cadastra um usuário
func (s *Service) CreateUsuario(ctx context.Context, sess *session.Session, in model.UsuarioInput) (json.RawMessage, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	return s.api.CreateUsuario(ctx, sess.Upstream(), in)
}

// UpdateUsuario altera um usuário
func (s *Service) UpdateUsuario(ctx context.Context, sess *session.Session, id model.ID, in model.UsuarioInput) (json.RawMessage, error) {
	if in == (model.UsuarioInput{}) {
		return nil, apperrors.BadRequest("nenhum campo para atualizar", nil)
	}
	return s.api.UpdateUsuario(ctx, sess.Upstream(), id, in)
}

// DeleteUsuario remove um usuário
func (s *Service) DeleteUsuario(ctx context.Context, sess *session.Session, id model.ID) error {
	return s.api.DeleteUsuario(ctx, sess.Upstream(), id)
}

// ClearCache descarta o cache de dados de todos os usuários
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx, dataKeyPrefix)
}

// aulas busca as aulas (com cache curto), converte para o fuso configurado e calcula o status.
// A conversão acontece antes do cache para que datas sem fuso não percam a marcação
func (s *Service) aulas(ctx context.Context, sess *session.Session) ([]model.Aula, error) {
	raw, err := cached(ctx, s, sess, "aulas", func(ctx context.Context) ([]model.Aula, error) {
		aulas, err := s.api.Aulas(ctx, sess.Upstream())
		if err != nil {
			return nil, err
		}
		for i := range aulas {
			aulas[i].DataHora = s.localize(aulas[i].DataHora, "data_hora", aulas[i].ID)
		}
		return aulas, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range raw {
		raw[i].DataHora = raw[i].DataHora.Localize(s.loc)
	}
	return s.classifier.Decorate(raw, s.now()), nil
}

func (s *Service) funcionarios(ctx context.Context, sess *session.Session) ([]model.Funcionario, error) {
	return cached(ctx, s, sess, "funcionarios", func(ctx context.Context) ([]model.Funcionario, error) {
		funcs, err := s.api.Funcionarios(ctx, sess.Upstream())
		if err != nil {
			return nil, err
		}
		for i := range funcs {
			funcs[i].UltimaParticipacao = s.localize(funcs[i].UltimaParticipacao, "ultima_participacao", funcs[i].ID)
		}
		return funcs, nil
	})
}

// localize leva a data para o fuso configurado e registra valores que a API mandou em formato desconhecido
func (s *Service) localize(ts model.Timestamp, field string, id model.ID) model.Timestamp {
	if raw := ts.Invalid(); raw != "" {
		s.logger.Warn("data em formato não reconhecido",
			zap.String("field", field),
			zap.String("id", id.String()),
			zap.String("value", raw))
	}
	return ts.Localize(s.loc)
}

// participantesDe busca os participantes de cada aula com concorrência limitada
func (s *Service) participantesDe(ctx context.Context, sess *session.Session, aulas []model.Aula) (map[model.ID][]model.Participante, error) {
	out := make(map[model.ID][]model.Participante, len(aulas))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, a := range aulas {
		if a.Status == model.StatusAgendada {
			continue
		}
		id := a.ID
		g.Go(func() error {
			ps, err := s.api.Participantes(gctx, sess.Upstream(), id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = ps
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func dataKey(sess *session.Session, name string) string {
	userID := ""
	if sess != nil && sess.User != nil {
		userID = sess.User.ID.String()
	}
	auth := sess.Upstream()
	return fmt.Sprintf("%s%s:%d:%s", dataKeyPrefix, userID, auth.EmpresaID, name)
}

// cached consulta o cache de dados antes de chamar fetch; falhas do cache apenas geram log
func cached[T any](ctx context.Context, s *Service, sess *session.Session, name string, fetch func(context.Context) (T, error)) (T, error) {
	key := dataKey(sess, name)

	if s.dataTTL > 0 {
		var hit T
		found, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.logger.Warn("falha ao ler cache de dados", zap.String("key", key), zap.Error(err))
		} else if found {
			return hit, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	if s.dataTTL > 0 {
		if err := s.cache.Set(ctx, key, value, s.dataTTL); err != nil {
			s.logger.Warn("falha ao gravar cache de dados", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}
