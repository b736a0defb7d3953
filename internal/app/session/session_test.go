package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/mocks"
	"github.com/digitalsix/presenca-dashboard/internal/testutils"
	"github.com/digitalsix/presenca-dashboard/pkg/cache"
	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, api session.AuthAPI) (*session.Service, cache.Cache) {
	logger := testutils.TestLogger(t)
	c := cache.NewMemoryCache(time.Hour, time.Minute, nil, logger)
	return session.NewService(c, api, time.Hour, nil, logger), c
}

func cliente() *model.User {
	empresa := model.ID(7)
	return &model.User{ID: 3, Nome: "Ana", Email: "ana@basf.com", TipoUsuario: model.RoleCliente, EmpresaID: &empresa}
}

func TestSessionPredicates(t *testing.T) {
	var nilSession *session.Session
	assert.False(t, nilSession.IsAuthenticated())
	assert.False(t, nilSession.IsAdmin())
	assert.Empty(t, nilSession.AuthHeader())

	assert.False(t, (&session.Session{User: cliente()}).IsAuthenticated())
	assert.False(t, (&session.Session{Token: "t"}).IsAuthenticated())

	s := &session.Session{User: cliente(), Token: "t"}
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsCliente())
	assert.False(t, s.IsAdmin())
	assert.Equal(t, "Bearer t", s.AuthHeader())
	assert.Equal(t, upstream.Auth{Token: "t", EmpresaID: 7}, s.Upstream())
}

func TestService_LoginAndGet(t *testing.T) {
	svc, _ := newService(t, new(mocks.MockUpstream))
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	sess, err := svc.Login(ctx, cliente(), "tok")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, cliente(), got.User)

	_, err = svc.Get(ctx, "outra")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestService_GetRequiresBothKeys(t *testing.T) {
	svc, c := newService(t, new(mocks.MockUpstream))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "auth_token:sid", "tok", time.Hour))
	_, err := svc.Get(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, c.Delete(ctx, "auth_token:sid"))
	require.NoError(t, c.Set(ctx, "user_data:sid", cliente(), time.Hour))
	_, err = svc.Get(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestService_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("token válido atualiza usuário", func(t *testing.T) {
		api := new(mocks.MockUpstream)
		svc, _ := newService(t, api)
		sess, err := svc.Login(ctx, cliente(), "tok")
		require.NoError(t, err)

		atualizado := &model.User{ID: 3, Nome: "Ana Souza", TipoUsuario: model.RoleCliente}
		api.On("Me", mock.Anything, upstream.Auth{Token: "tok", EmpresaID: 7}).Return(atualizado, nil).Once()

		restored, err := svc.Restore(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Souza", restored.User.Nome)
		require.NotNil(t, restored.User.EmpresaID)

		got, err := svc.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Souza", got.User.Nome)
		api.AssertExpectations(t)
	})

	t.Run("resposta não OK limpa a sessão", func(t *testing.T) {
		api := new(mocks.MockUpstream)
		svc, _ := newService(t, api)
		sess, err := svc.Login(ctx, cliente(), "tok")
		require.NoError(t, err)

		api.On("Me", mock.Anything, mock.Anything).Return(nil, apperrors.FromUpstream(401, nil)).Once()

		_, err = svc.Restore(ctx, sess.ID)
		assert.ErrorIs(t, err, session.ErrExpired)

		_, err = svc.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("erro de conexão também limpa a sessão", func(t *testing.T) {
		api := new(mocks.MockUpstream)
		svc, _ := newService(t, api)
		sess, err := svc.Login(ctx, cliente(), "tok")
		require.NoError(t, err)

		api.On("Me", mock.Anything, mock.Anything).Return(nil, apperrors.Connection(errors.New("dial tcp"))).Once()

		_, err = svc.Restore(ctx, sess.ID)
		assert.ErrorIs(t, err, session.ErrExpired)

		_, err = svc.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("sem sessão não chama a API", func(t *testing.T) {
		api := new(mocks.MockUpstream)
		svc, _ := newService(t, api)

		_, err := svc.Restore(ctx, "inexistente")
		assert.ErrorIs(t, err, session.ErrNotFound)
		api.AssertNotCalled(t, "Me", mock.Anything, mock.Anything)
	})
}

func TestService_LogoutClearsEvenOnNetworkFailure(t *testing.T) {
	ctx := context.Background()
	api := new(mocks.MockUpstream)
	svc, _ := newService(t, api)

	sess, err := svc.Login(ctx, cliente(), "tok")
	require.NoError(t, err)

	api.On("Logout", mock.Anything, upstream.Auth{Token: "tok", EmpresaID: 7}).
		Return(apperrors.Connection(errors.New("timeout"))).Once()

	require.NoError(t, svc.Logout(ctx, sess.ID))

	_, err = svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	api.AssertExpectations(t)
}

func TestService_LoginRollsBackOnPartialWrite(t *testing.T) {
	ctx := context.Background()
	c := new(mocks.MockCache)
	svc := session.NewService(c, new(mocks.MockUpstream), time.Hour, nil, testutils.TestLogger(t))

	c.On("Set", mock.Anything, mock.MatchedBy(func(k string) bool { return len(k) > 11 && k[:11] == "auth_token:" }), "tok", time.Hour).Return(nil).Once()
	c.On("Set", mock.Anything, mock.MatchedBy(func(k string) bool { return len(k) > 10 && k[:10] == "user_data:" }), mock.Anything, time.Hour).Return(errors.New("redis down")).Once()
	c.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	_, err := svc.Login(ctx, cliente(), "tok")
	require.Error(t, err)
	c.AssertExpectations(t)
}
