package circuitbreaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caira-engine/pkg/circuitbreaker"
)

var errBoom = errors.New("boom")

func testConfig() circuitbreaker.Config {
	return circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             30 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	}
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := circuitbreaker.New(testConfig())
	assert.Equal(t, circuitbreaker.StateClosed, cb.GetState())

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, circuitbreaker.StateOpen, cb.GetState())

	err := cb.Execute(succeed)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := circuitbreaker.New(testConfig())

	require.Error(t, cb.Execute(fail))
	require.NoError(t, cb.Execute(succeed))
	require.Error(t, cb.Execute(fail))

	// One failure after a success must not open a threshold-2 breaker.
	assert.Equal(t, circuitbreaker.StateClosed, cb.GetState())
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := circuitbreaker.New(testConfig())

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))
	require.Equal(t, circuitbreaker.StateOpen, cb.GetState())

	time.Sleep(40 * time.Millisecond)

	// Probe succeeds, breaker closes.
	require.NoError(t, cb.Execute(succeed))
	assert.Equal(t, circuitbreaker.StateClosed, cb.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := circuitbreaker.New(testConfig())

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))

	time.Sleep(40 * time.Millisecond)

	require.Error(t, cb.Execute(fail))
	assert.Equal(t, circuitbreaker.StateOpen, cb.GetState())

	err := cb.Execute(succeed)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestReset(t *testing.T) {
	cb := circuitbreaker.New(testConfig())

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))
	require.Equal(t, circuitbreaker.StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, circuitbreaker.StateClosed, cb.GetState())
	assert.NoError(t, cb.Execute(succeed))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", circuitbreaker.StateClosed.String())
	assert.Equal(t, "open", circuitbreaker.StateOpen.String())
	assert.Equal(t, "half_open", circuitbreaker.StateHalfOpen.String())
}
