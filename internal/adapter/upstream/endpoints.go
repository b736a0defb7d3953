package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
)

// Login autentica com email e senha
func (c *Client) Login(ctx context.Context, email, senha string) (*model.LoginResponse, error) {
	var out model.LoginResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/auth/login",
		path:     "/auth/login",
		body:     model.LoginRequest{Email: email, Senha: senha},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, apperrors.New(http.StatusBadGateway, "Resposta de login sem token.", nil)
	}
	return &out, nil
}

// Me valida o token e retorna o usuário atual
func (c *Client) Me(ctx context.Context, auth Auth) (*model.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/auth/me", path: "/auth/me", auth: auth}, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		User *model.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.User != nil {
		return envelope.User, nil
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, apperrors.New(http.StatusBadGateway, "Dados inválidos recebidos da API.", err)
	}
	return &user, nil
}

// Logout encerra o token na API
func (c *Client) Logout(ctx context.Context, auth Auth) error {
	return c.do(ctx, call{method: http.MethodPost, endpoint: "/auth/logout", path: "/auth/logout", auth: auth}, nil)
}

// Stats busca as estatísticas de engajamento da empresa
func (c *Client) Stats(ctx context.Context, auth Auth) (*model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/cliente/stats", path: "/cliente/stats", auth: auth}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Aulas busca o histórico de aulas da empresa
func (c *Client) Aulas(ctx context.Context, auth Auth) ([]model.Aula, error) {
	out := []model.Aula{}
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/cliente/aulas", path: "/cliente/aulas", auth: auth}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Aula{}
	}
	return out, nil
}

// Funcionarios busca os funcionários da empresa e suas participações
func (c *Client) Funcionarios(ctx context.Context, auth Auth) ([]model.Funcionario, error) {
	out := []model.Funcionario{}
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/cliente/funcionarios", path: "/cliente/funcionarios", auth: auth}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Funcionario{}
	}
	return out, nil
}

// Participantes busca os participantes de uma aula
func (c *Client) Participantes(ctx context.Context, auth Auth, aulaID model.ID) ([]model.Participante, error) {
	var out model.ParticipantesResponse
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/cliente/aulas/:id/participantes",
		path:     fmt.Sprintf("/cliente/aulas/%s/participantes", url.PathEscape(aulaID.String())),
		auth:     auth,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Participantes == nil {
		out.Participantes = []model.Participante{}
	}
	return out.Participantes, nil
}

// Relatorios busca os relatórios mensais do período (em meses)
func (c *Client) Relatorios(ctx context.Context, auth Auth, periodo string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/cliente/relatorios",
		path:     "/cliente/relatorios",
		query:    url.Values{"periodo": []string{periodo}},
		auth:     auth,
	}, &out)
	return out, err
}

// Evolucao busca os dados do gráfico de evolução temporal
func (c *Client) Evolucao(ctx context.Context, auth Auth) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/cliente/evolucao", path: "/cliente/evolucao", auth: auth}, &out)
	return out, err
}

// Export baixa um relatório gerado pela própria API
func (c *Client) Export(ctx context.Context, auth Auth, tipo, formato string) (*model.ExportFile, error) {
	resp, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: "/cliente/export/:tipo",
		path:     "/cliente/export/" + url.PathEscape(tipo),
		query:    url.Values{"format": []string{formato}},
		auth:     auth,
	})
	if err != nil {
		return nil, err
	}

	file := &model.ExportFile{
		Filename:    fmt.Sprintf("relatorio_%s.%s", tipo, formato),
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}
	if file.ContentType == "" {
		file.ContentType = "application/octet-stream"
	}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		file.Filename = params["filename"]
	}
	return file, nil
}

// AdminUsuarios lista os usuários cadastrados
func (c *Client) AdminUsuarios(ctx context.Context, auth Auth) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/admin/usuarios", path: "/admin/usuarios", auth: auth}, &out)
	return out, err
}

// AdminStats busca as estatísticas globais
func (c *Client) AdminStats(ctx context.Context, auth Auth) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/admin/stats", path: "/admin/stats", auth: auth}, &out)
	return out, err
}

// CreateUsuario cadastra um usuário
func (c *Client) CreateUsuario(ctx context.Context, auth Auth, in model.UsuarioInput) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/admin/usuarios", path: "/admin/usuarios", body: in, auth: auth}, &out)
	return out, err
}

// UpdateUsuario altera um usuário
func (c *Client) UpdateUsuario(ctx context.Context, auth Auth, id model.ID, in model.UsuarioInput) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: "/admin/usuarios/:id",
		path:     "/admin/usuarios/" + url.PathEscape(id.String()),
		body:     in,
		auth:     auth,
	}, &out)
	return out, err
}

// DeleteUsuario remove um usuário
func (c *Client) DeleteUsuario(ctx context.Context, auth Auth, id model.ID) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/admin/usuarios/:id",
		path:     "/admin/usuarios/" + url.PathEscape(id.String()),
		auth:     auth,
	}, nil)
}

// Ping verifica se a API está respondendo
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodGet, endpoint: "/", path: "/"}, nil)
}
