package errors_test

import (
	"errors"
	"net/http"
	"testing"

	apperrors "github.com/digitalsix/presenca-dashboard/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", apperrors.FromUpstream(http.StatusUnauthorized, nil), apperrors.MsgUnauthorized},
		{"forbidden", apperrors.FromUpstream(http.StatusForbidden, []byte(`{"error":"x"}`)), apperrors.MsgForbidden},
		{"not found", apperrors.FromUpstream(http.StatusNotFound, nil), apperrors.MsgNotFound},
		{"server error", apperrors.FromUpstream(http.StatusInternalServerError, []byte("boom")), apperrors.MsgServerError},
		{"upstream message", apperrors.FromUpstream(http.StatusUnprocessableEntity, []byte(`{"error":"Email já cadastrado"}`)), "Email já cadastrado"},
		{"connection", apperrors.Connection(errors.New("dial tcp: connection refused")), apperrors.MsgConnection},
		{"bad gateway without body", apperrors.FromUpstream(http.StatusBadGateway, nil), apperrors.MsgUnknown},
		{"plain error", errors.New("qualquer"), apperrors.MsgUnknown},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.UserMessage(tt.err))
		})
	}
}

func TestFromUpstream_Sentinels(t *testing.T) {
	err := apperrors.FromUpstream(http.StatusUnauthorized, []byte(`{"error":"Token inválido"}`))

	assert.True(t, apperrors.IsUnauthorized(err))
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Equal(t, "Token inválido", err.Message)
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))

	notFound := apperrors.FromUpstream(http.StatusNotFound, nil)
	assert.False(t, apperrors.IsUnauthorized(notFound))
	assert.True(t, errors.Is(notFound, apperrors.ErrNotFound))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, apperrors.StatusCode(apperrors.Connection(errors.New("timeout"))))
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(errors.New("x")))
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(apperrors.BadRequest("inválido", nil)))
}
