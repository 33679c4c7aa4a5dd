package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPortalDown = errors.New("portal down")

func failing(context.Context) error    { return errPortalDown }
func succeeding(context.Context) error { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	ctx := context.Background()
	cb := New("test", WithFailureThreshold(3))

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, failing), errPortalDown)
	}
	assert.Equal(t, StateOpen, cb.State())

	// While open, the call is rejected before the function runs.
	invoked := false
	err := cb.Execute(ctx, func(context.Context) error {
		invoked = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, invoked)
}

func TestBreaker_HalfOpenProbeCloses(t *testing.T) {
	ctx := context.Background()
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(2),
		WithTimeout(10*time.Millisecond))

	require.Error(t, cb.Execute(ctx, failing))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	cb := New("test", WithFailureThreshold(1), WithTimeout(10*time.Millisecond))

	require.Error(t, cb.Execute(ctx, failing))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreaker_IsFailureExcludesClassifiedErrors(t *testing.T) {
	ctx := context.Background()
	errBadCredentials := errors.New("bad credentials")
	cb := New("test",
		WithFailureThreshold(2),
		WithIsFailure(func(err error) bool {
			return !errors.Is(err, errBadCredentials)
		}))

	// Excluded errors pass through to the caller but never trip the
	// breaker, no matter how many arrive.
	for i := 0; i < 10; i++ {
		err := cb.Execute(ctx, func(context.Context) error { return errBadCredentials })
		assert.ErrorIs(t, err, errBadCredentials)
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.Counts().ConsecutiveFailures)

	// Real failures still count.
	require.Error(t, cb.Execute(ctx, failing))
	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	ctx := context.Background()
	var transitions []string
	cb := New("test",
		WithFailureThreshold(1),
		WithOnStateChange(func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}))

	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_Reset(t *testing.T) {
	ctx := context.Background()
	cb := New("test", WithFailureThreshold(1))

	require.Error(t, cb.Execute(ctx, failing))
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	require.NoError(t, cb.Execute(ctx, succeeding))
}
