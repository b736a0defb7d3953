package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/digitalsix/presenca-dashboard/internal/app/audit"
	"github.com/digitalsix/presenca-dashboard/internal/domain/model"
	"github.com/digitalsix/presenca-dashboard/internal/mocks"
	"github.com/digitalsix/presenca-dashboard/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_Record(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := audit.NewService(repo, testutils.TestLogger(t))
	user := &model.User{ID: 7, Email: "ana@empresa.com"}

	repo.On("Record", mock.Anything, mock.MatchedBy(func(e *model.AuditEvent) bool {
		return e.UserID == "7" && e.Email == "ana@empresa.com" && e.Acao == model.AuditExport && e.IP == "10.0.0.1"
	})).Return(nil).Once()

	svc.Record(context.Background(), user, model.AuditExport, "aulas.xlsx", "10.0.0.1")
	repo.AssertExpectations(t)
}

func TestService_RecordFailureIsNotFatal(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := audit.NewService(repo, testutils.TestLogger(t))

	repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), nil, model.AuditLogin, "", "")
	})
	repo.AssertExpectations(t)
}

func TestService_Disabled(t *testing.T) {
	svc := audit.NewService(nil, testutils.TestLogger(t))

	assert.False(t, svc.Enabled())
	svc.Record(context.Background(), nil, model.AuditLogin, "", "")

	events, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestService_List(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := audit.NewService(repo, testutils.TestLogger(t))

	repo.On("List", mock.Anything, 20).Return([]model.AuditEvent{{ID: 1, Acao: model.AuditLogin}}, nil).Once()

	events, err := svc.List(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
