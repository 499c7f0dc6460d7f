package utils

import (
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(16)
	require.NoError(t, err)
	assert.Len(t, code, 32) // hex doubles the byte count
	assert.Equal(t, code, string([]byte(code)))

	_, err = hex.DecodeString(code)
	assert.NoError(t, err)

	other, err := GenerateCode(16)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreakerWithConfig("test", 3, time.Hour)
	boom := errors.New("backend down")

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, BreakerOpen, cb.State())

	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, ran)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreakerWithConfig("test", 3, time.Hour)
	boom := errors.New("backend down")

	cb.Execute(func() error { return boom })
	cb.Execute(func() error { return boom })
	require.NoError(t, cb.Execute(func() error { return nil }))
	cb.Execute(func() error { return boom })
	cb.Execute(func() error { return boom })

	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeRecloses(t *testing.T) {
	cb := NewCircuitBreakerWithConfig("test", 1, 10*time.Millisecond)

	cb.Execute(func() error { return errors.New("down") })
	require.Equal(t, BreakerOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreakerWithConfig("test", 1, 10*time.Millisecond)

	cb.Execute(func() error { return errors.New("down") })
	time.Sleep(20 * time.Millisecond)

	err := cb.Execute(func() error { return errors.New("still down") })
	assert.Error(t, err)
	assert.Equal(t, BreakerOpen, cb.State())
}
