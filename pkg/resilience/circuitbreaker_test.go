package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errFalha = errors.New("falha")

func failing(context.Context) error { return errFalha }
func succeeding(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "teste", MaxRequestsFail: 2, Timeout: time.Minute}, zaptest.NewLogger(t), nil)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, failing), errFalha)
	assert.Equal(t, StateClose, cb.GetState())
	assert.ErrorIs(t, cb.Execute(ctx, failing), errFalha)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "teste", MaxRequestsFail: 1, Timeout: time.Second}, zaptest.NewLogger(t), nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	require.Equal(t, StateOpen, cb.GetState())

	now = now.Add(2 * time.Second)
	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, StateClose, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "teste", MaxRequestsFail: 1, Timeout: time.Second}, zaptest.NewLogger(t), nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	now = now.Add(2 * time.Second)
	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	errCliente := errors.New("404")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:            "teste",
		MaxRequestsFail: 1,
		IsFailure:       func(err error) bool { return err != nil && !errors.Is(err, errCliente) },
	}, zaptest.NewLogger(t), nil)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func(context.Context) error { return errCliente })
	}
	assert.Equal(t, StateClose, cb.GetState())
}
