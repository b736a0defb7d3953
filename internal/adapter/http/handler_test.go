package http_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	handler "github.com/digitalsix/presenca-dashboard/internal/adapter/http"
	"github.com/digitalsix/presenca-dashboard/internal/adapter/export"
	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/app/audit"
	"github.com/digitalsix/presenca-dashboard/internal/app/dashboard"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/infra/middleware"
	"github.com/digitalsix/presenca-dashboard/internal/mocks"
	"github.com/digitalsix/presenca-dashboard/internal/testutils"
	"github.com/digitalsix/presenca-dashboard/pkg/cache"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/digitalsix/presenca-dashboard/pkg/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "segredo-de-teste-com-mais-de-32-caracteres"
	upstreamToken = "upstream-token"
)

var (
	cliente = model.User{ID: 3, Nome: "Ana", Email: "ana@empresa.com", TipoUsuario: model.RoleCliente}
	admin   = model.User{ID: 1, Nome: "Root", Email: "root@digitalsix.com.br", TipoUsuario: model.RoleAdmin}
	apiAuth = upstream.Auth{Token: upstreamToken}
)

type fixture struct {
	router   *gin.Engine
	api      *mocks.MockUpstream
	audit    *mocks.MockAuditRepository
	keys     *security.KeyManager
	sessions *session.Service
	cache    *cache.MemoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testutils.TestLogger(t)

	api := new(mocks.MockUpstream)
	repo := new(mocks.MockAuditRepository)
	repo.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()

	mem := cache.NewMemoryCache(time.Hour, time.Minute, nil, logger)
	keys, err := security.NewKeyManager(testSecret, logger)
	require.NoError(t, err)
	sessions := session.NewService(mem, api, time.Hour, nil, logger)
	auditSvc := audit.NewService(repo, logger)

	svc, err := dashboard.NewService(api, mem, config.DashboardConfig{
		ClassDuration:            time.Hour,
		Timezone:                 "America/Sao_Paulo",
		DataCacheTTL:             time.Minute,
		ParticipantesConcurrency: 2,
	}, logger)
	require.NoError(t, err)

	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"*"}},
		Tracing: config.TracingConfig{ServiceName: "presenca-dashboard"},
	}
	mw := middleware.NewMiddleware(cfg, middleware.Deps{Tokens: keys, Sessions: sessions}, logger)

	authH := handler.NewAuthHandler(api, sessions, keys, auditSvc, logger)
	clienteH := handler.NewClienteHandler(svc, export.NewGenerator(svc.Location(), nil, logger), sessions, auditSvc, logger)
	adminH := handler.NewAdminHandler(svc, sessions, auditSvc, logger)

	router := testutils.SetupTestRouter(t)
	router.POST("/auth/login", authH.Login)

	authed := router.Group("/", mw.Authenticate)
	authed.POST("/auth/logout", authH.Logout)
	authed.GET("/auth/me", authH.Me)
	authed.GET("/cliente/stats", clienteH.Stats)
	authed.GET("/cliente/aulas", clienteH.Aulas)
	authed.GET("/cliente/aulas/:id/participantes", clienteH.Participantes)
	authed.GET("/cliente/graficos", clienteH.Graficos)
	authed.GET("/cliente/export/:tipo", clienteH.ExportRemoto)
	authed.GET("/cliente/exports/aulas", clienteH.ExportAulas)
	authed.GET("/cliente/exports/aulas/:id", clienteH.ExportAula)

	adm := authed.Group("/admin", mw.RequireAdmin)
	adm.GET("/stats", adminH.Stats)
	adm.POST("/usuarios", adminH.CreateUsuario)
	adm.DELETE("/usuarios/:id", adminH.DeleteUsuario)
	adm.GET("/auditoria", adminH.Auditoria)
	adm.POST("/cache/limpar", adminH.LimparCache)

	return &fixture{router: router, api: api, audit: repo, keys: keys, sessions: sessions, cache: mem}
}

// login cria uma sessão diretamente e devolve o token do navegador
func (f *fixture) login(t *testing.T, user model.User) (string, string) {
	t.Helper()
	sess, err := f.sessions.Login(context.Background(), &user, upstreamToken)
	require.NoError(t, err)
	token, err := f.keys.GenerateToken(sess.ID, user.ID.String(), user.TipoUsuario, time.Hour)
	require.NoError(t, err)
	return token, sess.ID
}

func sampleAulas() []model.Aula {
	return []model.Aula{
		{ID: 1, Descricao: "Alongamento", ProfessorNome: "Carla", NumPresencas: 8, DataHora: model.NewTimestamp(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))},
		{ID: 2, Descricao: "Yoga", ProfessorNome: "Bruno", NumPresencas: 4, DataHora: model.NewTimestamp(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))},
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("sucesso", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, "ana@empresa.com", "123456").
			Return(&model.LoginResponse{Token: upstreamToken, User: cliente}, nil).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/auth/login",
			model.LoginRequest{Email: "ana@empresa.com", Senha: "123456"}, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)

		var body handler.LoginResponse
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, int64(3600), body.ExpiresIn)
		assert.Equal(t, "Ana", body.User.Nome)

		claims, err := f.keys.VerifyToken(body.Token)
		require.NoError(t, err)
		assert.Equal(t, "3", claims.UserID)
		assert.Equal(t, model.RoleCliente, claims.Role)

		sess, err := f.sessions.Get(context.Background(), claims.SessionID)
		require.NoError(t, err)
		assert.Equal(t, upstreamToken, sess.Token)
		f.audit.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(e *model.AuditEvent) bool {
			return e.Acao == model.AuditLogin && e.UserID == "3"
		}))
	})

	t.Run("corpo inválido", func(t *testing.T) {
		f := newFixture(t)
		resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/auth/login", `{"email":"nao-e-email"}`, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
		f.api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("credenciais recusadas mostram a mensagem da API", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.FromUpstream(http.StatusUnauthorized, []byte(`{"error":"Email ou senha incorretos"}`))).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/auth/login",
			model.LoginRequest{Email: "ana@empresa.com", Senha: "errada"}, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "Email ou senha incorretos", body["error"])
	})

	t.Run("API inacessível", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.Connection(errors.New("connection refused"))).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/auth/login",
			model.LoginRequest{Email: "ana@empresa.com", Senha: "123456"}, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusBadGateway)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, apperrors.MsgConnection, body["error"])
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("token válido atualiza o usuário", func(t *testing.T) {
		f := newFixture(t)
		token, _ := f.login(t, cliente)

		updated := cliente
		updated.Nome = "Ana Souza"
		f.api.On("Me", mock.Anything, apiAuth).Return(&updated, nil).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/auth/me", nil, testutils.Bearer(token))
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)

		var body struct {
			User      model.User `json:"user"`
			IsAdmin   bool       `json:"isAdmin"`
			IsCliente bool       `json:"isCliente"`
		}
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "Ana Souza", body.User.Nome)
		assert.False(t, body.IsAdmin)
		assert.True(t, body.IsCliente)
	})

	t.Run("token recusado limpa a sessão", func(t *testing.T) {
		f := newFixture(t)
		token, sid := f.login(t, cliente)
		f.api.On("Me", mock.Anything, apiAuth).Return(nil, apperrors.FromUpstream(http.StatusUnauthorized, nil)).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/auth/me", nil, testutils.Bearer(token))
		testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, middleware.RedirectLogin, body["redirect"])

		_, err := f.sessions.Get(context.Background(), sid)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newFixture(t)
	token, sid := f.login(t, cliente)
	f.api.On("Logout", mock.Anything, apiAuth).Return(errors.New("timeout")).Once()

	resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/auth/logout", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	_, err := f.sessions.Get(context.Background(), sid)
	assert.ErrorIs(t, err, session.ErrNotFound)
	f.api.AssertExpectations(t)

	resp = testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/stats", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)
}

func TestClienteHandler_Unauthorized(t *testing.T) {
	f := newFixture(t)
	token, sid := f.login(t, cliente)
	f.api.On("Stats", mock.Anything, apiAuth).Return(nil, apperrors.FromUpstream(http.StatusUnauthorized, nil)).Once()

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/stats", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

	var body map[string]interface{}
	testutils.ParseResponse(t, resp, &body)
	assert.Equal(t, apperrors.MsgUnauthorized, body["error"])
	assert.Equal(t, false, body["retry"])
	assert.Equal(t, middleware.RedirectLogin, body["redirect"])

	_, err := f.sessions.Get(context.Background(), sid)
	assert.ErrorIs(t, err, session.ErrNotFound)
	f.audit.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(e *model.AuditEvent) bool {
		return e.Acao == model.AuditSessaoExpirada
	}))
}

func TestClienteHandler_ServerError(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)
	f.api.On("Stats", mock.Anything, apiAuth).Return(nil, apperrors.FromUpstream(http.StatusInternalServerError, nil)).Once()

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/stats", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusInternalServerError)

	var body map[string]interface{}
	testutils.ParseResponse(t, resp, &body)
	assert.Equal(t, apperrors.MsgServerError, body["error"])
	assert.Equal(t, true, body["retry"])
}

func TestClienteHandler_Aulas(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)
	f.api.On("Aulas", mock.Anything, apiAuth).Return(sampleAulas(), nil).Once()

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/aulas?busca=bruno", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	testutils.RequireJSONContentType(t, resp)

	var page dashboard.AulasPage
	testutils.ParseResponse(t, resp, &page)
	require.Len(t, page.Aulas, 1)
	assert.Equal(t, "Yoga", page.Aulas[0].Descricao)
	assert.Equal(t, model.StatusConcluida, page.Aulas[0].Status)
}

func TestClienteHandler_ParticipantesInvalidID(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/aulas/abc/participantes", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
	f.api.AssertNotCalled(t, "Participantes", mock.Anything, mock.Anything, mock.Anything)
}

func TestClienteHandler_GraficosInvalidGrouping(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/graficos?agrupamento=semana", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
}

func TestClienteHandler_ExportAulas(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)
	f.api.On("Aulas", mock.Anything, apiAuth).Return(sampleAulas(), nil).Once()

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/exports/aulas?format=xlsx", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.Equal(t, `attachment; filename=historico_aulas.xlsx`, resp.Header().Get("Content-Disposition"))
	assert.NotZero(t, resp.Body.Len())
	f.audit.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(e *model.AuditEvent) bool {
		return e.Acao == model.AuditExport && e.Detalhe == "historico_aulas.xlsx"
	}))
}

func TestClienteHandler_ExportAulaSemParticipantes(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)
	f.api.On("Aulas", mock.Anything, apiAuth).Return(sampleAulas(), nil).Once()
	f.api.On("Participantes", mock.Anything, apiAuth, model.ID(2)).Return([]model.Participante{}, nil).Once()

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/exports/aulas/2?format=pdf", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
}

func TestClienteHandler_ExportRemoto(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)

	t.Run("tipo inválido", func(t *testing.T) {
		resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/export/tudo", nil, testutils.Bearer(token))
		testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("repassa o arquivo da API", func(t *testing.T) {
		f.api.On("Export", mock.Anything, apiAuth, "geral", "csv").
			Return(&model.ExportFile{Filename: "relatorio_geral.csv", ContentType: "text/csv", Data: []byte("a;b\n")}, nil).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/cliente/export/geral?format=csv", nil, testutils.Bearer(token))
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
		assert.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
		assert.Equal(t, "a;b\n", resp.Body.String())
	})
}

func TestAdminHandler_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, cliente)

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/admin/stats", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusForbidden)
	f.api.AssertNotCalled(t, "AdminStats", mock.Anything, mock.Anything)
}

func TestAdminHandler_Usuarios(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, admin)

	t.Run("criação valida campos obrigatórios", func(t *testing.T) {
		resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/admin/usuarios",
			model.UsuarioInput{Nome: "Novo"}, testutils.Bearer(token))
		testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("criação", func(t *testing.T) {
		in := model.UsuarioInput{Nome: "Novo", Email: "novo@empresa.com", Senha: "123456", TipoUsuario: model.RoleCliente}
		f.api.On("CreateUsuario", mock.Anything, apiAuth, in).Return(`{"id":10}`, nil).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/admin/usuarios", in, testutils.Bearer(token))
		testutils.RequireHTTPStatus(t, resp, http.StatusCreated)
		assert.JSONEq(t, `{"id":10}`, resp.Body.String())
	})

	t.Run("remoção", func(t *testing.T) {
		f.api.On("DeleteUsuario", mock.Anything, apiAuth, model.ID(10)).Return(nil).Once()

		resp := testutils.MakeRequest(t, f.router, http.MethodDelete, "/admin/usuarios/10", nil, testutils.Bearer(token))
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	})

	f.api.AssertExpectations(t)
}

func TestAdminHandler_Auditoria(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, admin)
	events := []model.AuditEvent{{ID: 2, Acao: model.AuditLogin}, {ID: 1, Acao: model.AuditExport}}
	f.audit.On("List", mock.Anything, 2).Return(events, nil).Once()

	resp := testutils.MakeRequest(t, f.router, http.MethodGet, "/admin/auditoria?limit=2", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	var body struct {
		Eventos []model.AuditEvent `json:"eventos"`
		Total   int                `json:"total"`
	}
	testutils.ParseResponse(t, resp, &body)
	assert.Equal(t, 2, body.Total)

	resp = testutils.MakeRequest(t, f.router, http.MethodGet, "/admin/auditoria?limit=-1", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
}

func TestAdminHandler_LimparCache(t *testing.T) {
	f := newFixture(t)
	token, sid := f.login(t, admin)
	require.NoError(t, f.cache.Set(context.Background(), "data:3:aulas", "x", time.Minute))

	resp := testutils.MakeRequest(t, f.router, http.MethodPost, "/admin/cache/limpar", nil, testutils.Bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	var v string
	found, err := f.cache.Get(context.Background(), "data:3:aulas", &v)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = f.sessions.Get(context.Background(), sid)
	assert.NoError(t, err, "a limpeza de dados preserva as sessões")
}
