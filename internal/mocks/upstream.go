package mocks

import (
	"context"
	"encoding/json"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockUpstream é um mock do cliente da API de presença
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) Login(ctx context.Context, email, senha string) (*model.LoginResponse, error) {
	args := m.Called(ctx, email, senha)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

func (m *MockUpstream) Me(ctx context.Context, auth upstream.Auth) (*model.User, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUpstream) Logout(ctx context.Context, auth upstream.Auth) error {
	args := m.Called(ctx, auth)
	return args.Error(0)
}

func (m *MockUpstream) Stats(ctx context.Context, auth upstream.Auth) (*model.Stats, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stats), args.Error(1)
}

func (m *MockUpstream) Aulas(ctx context.Context, auth upstream.Auth) ([]model.Aula, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Aula), args.Error(1)
}

func (m *MockUpstream) Funcionarios(ctx context.Context, auth upstream.Auth) ([]model.Funcionario, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Funcionario), args.Error(1)
}

func (m *MockUpstream) Participantes(ctx context.Context, auth upstream.Auth, aulaID model.ID) ([]model.Participante, error) {
	args := m.Called(ctx, auth, aulaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Participante), args.Error(1)
}

func (m *MockUpstream) Relatorios(ctx context.Context, auth upstream.Auth, periodo string) (json.RawMessage, error) {
	args := m.Called(ctx, auth, periodo)
	return rawMessage(args.Get(0)), args.Error(1)
}

func (m *MockUpstream) Evolucao(ctx context.Context, auth upstream.Auth) (json.RawMessage, error) {
	args := m.Called(ctx, auth)
	return rawMessage(args.Get(0)), args.Error(1)
}

func (m *MockUpstream) Export(ctx context.Context, auth upstream.Auth, tipo, formato string) (*model.ExportFile, error) {
	args := m.Called(ctx, auth, tipo, formato)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExportFile), args.Error(1)
}

func (m *MockUpstream) AdminUsuarios(ctx context.Context, auth upstream.Auth) (json.RawMessage, error) {
	args := m.Called(ctx, auth)
	return rawMessage(args.Get(0)), args.Error(1)
}

func (m *MockUpstream) AdminStats(ctx context.Context, auth upstream.Auth) (json.RawMessage, error) {
	args := m.Called(ctx, auth)
	return rawMessage(args.Get(0)), args.Error(1)
}

func (m *MockUpstream) CreateUsuario(ctx context.Context, auth upstream.Auth, in model.UsuarioInput) (json.RawMessage, error) {
	args := m.Called(ctx, auth, in)
	return rawMessage(args.Get(0)), args.Error(1)
}

func (m *MockUpstream) UpdateUsuario(ctx context.Context, auth upstream.Auth, id model.ID, in model.UsuarioInput) (json.RawMessage, error) {
	args := m.Called(ctx, auth, id, in)
	return rawMessage(args.Get(0)), args.Error(1)
}

func (m *MockUpstream) DeleteUsuario(ctx context.Context, auth upstream.Auth, id model.ID) error {
	args := m.Called(ctx, auth, id)
	return args.Error(0)
}

func (m *MockUpstream) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func rawMessage(v interface{}) json.RawMessage {
	switch raw := v.(type) {
	case json.RawMessage:
		return raw
	case string:
		return json.RawMessage(raw)
	}
	return nil
}
