package security_test

import (
	"testing"
	"time"

	"github.com/digitalsix/presenca-dashboard/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const secret = "segredo-de-teste-com-pelo-menos-32-bytes"

func TestKeyManager_RoundTrip(t *testing.T) {
	km, err := security.NewKeyManager(secret, zaptest.NewLogger(t))
	require.NoError(t, err)

	token, err := km.GenerateToken("sid-1", "42", "cliente_final", time.Hour)
	require.NoError(t, err)

	claims, err := km.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "cliente_final", claims.Role)
}

func TestKeyManager_Expired(t *testing.T) {
	km, err := security.NewKeyManager(secret, zaptest.NewLogger(t))
	require.NoError(t, err)

	token, err := km.GenerateToken("sid-1", "42", "admin", -time.Minute)
	require.NoError(t, err)

	_, err = km.VerifyToken(token)
	assert.ErrorIs(t, err, security.ErrTokenExpired)
}

func TestKeyManager_WrongKey(t *testing.T) {
	km1, err := security.NewKeyManager(secret, zaptest.NewLogger(t))
	require.NoError(t, err)
	km2, err := security.NewKeyManager("", zaptest.NewLogger(t))
	require.NoError(t, err)

	token, err := km1.GenerateToken("sid-1", "42", "admin", time.Hour)
	require.NoError(t, err)

	_, err = km2.VerifyToken(token)
	assert.ErrorIs(t, err, security.ErrTokenInvalid)
}

func TestKeyManager_ShortSecret(t *testing.T) {
	_, err := security.NewKeyManager("curto", zaptest.NewLogger(t))
	assert.Error(t, err)
}
