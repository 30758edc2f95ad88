package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDependency = errors.New("dependency unavailable")

func probeConfig() Config {
	return Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 3,
	}
}

func trip(t *testing.T, cb *CircuitBreaker, failures int) {
	t.Helper()
	for i := 0; i < failures; i++ {
		_ = cb.Execute(context.Background(), func() error { return errDependency })
	}
	require.Equal(t, StateOpen, cb.GetState())
}

func TestExecutePassesThroughWhileClosed(t *testing.T) {
	cb := New(DefaultConfig())

	err := cb.Execute(context.Background(), func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestExecuteCountsFailuresWhileClosed(t *testing.T) {
	cb := New(DefaultConfig())

	err := cb.Execute(context.Background(), func() error { return errDependency })
	require.Error(t, err)
	assert.ErrorIs(t, err, errDependency)

	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 1, cb.GetStats().FailureCount)
}

func TestOpenBreakerRejectsCalls(t *testing.T) {
	cb := New(probeConfig())
	trip(t, cb, 2)

	called := false
	err := cb.Execute(context.Background(), func() error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "call should not run while open")
}

func TestProbeSuccessesCloseBreaker(t *testing.T) {
	cb := New(probeConfig())
	trip(t, cb, 2)

	time.Sleep(60 * time.Millisecond)

	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestProbeFailureReopensBreaker(t *testing.T) {
	cb := New(probeConfig())
	trip(t, cb, 2)

	time.Sleep(60 * time.Millisecond)

	err := cb.Execute(context.Background(), func() error { return errDependency })
	require.Error(t, err)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestHalfOpenProbeLimit(t *testing.T) {
	cfg := probeConfig()
	cfg.SuccessThreshold = 5 // keep the breaker half-open during the test
	cfg.MaxRequestsHalfOpen = 2
	cb := New(cfg)
	trip(t, cb, 2)

	time.Sleep(60 * time.Millisecond)

	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	}

	require.Equal(t, StateHalfOpen, cb.GetState())
	err := cb.Execute(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestExecuteWithResult(t *testing.T) {
	cb := New(DefaultConfig())

	result, err := cb.ExecuteWithResult(context.Background(), func() (interface{}, error) {
		return "payload", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", result)

	result, err = cb.ExecuteWithResult(context.Background(), func() (interface{}, error) {
		return nil, errDependency
	})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestExecuteWithResultRejectedWhileOpen(t *testing.T) {
	cb := New(probeConfig())
	trip(t, cb, 2)

	result, err := cb.ExecuteWithResult(context.Background(), func() (interface{}, error) {
		return "payload", nil
	})
	require.ErrorIs(t, err, ErrOpen)
	assert.Nil(t, result)
}

func TestStateChangeCallback(t *testing.T) {
	cb := New(probeConfig())

	var mu sync.Mutex
	var seen []State
	cb.OnStateChange(func(from, to State) {
		mu.Lock()
		seen = append(seen, to)
		mu.Unlock()
	})

	trip(t, cb, 2)
	time.Sleep(60 * time.Millisecond)
	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func() error { return nil })
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		open, halfOpen, closed := false, false, false
		for _, s := range seen {
			switch s {
			case StateOpen:
				open = true
			case StateHalfOpen:
				halfOpen = true
			case StateClosed:
				closed = true
			}
		}
		return open && halfOpen && closed
	}, time.Second, 10*time.Millisecond)
}

func TestReset(t *testing.T) {
	cb := New(probeConfig())
	trip(t, cb, 2)

	cb.Reset()

	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetStats().FailureCount)
}

func TestConcurrentExecutes(t *testing.T) {
	cb := New(DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = cb.Execute(context.Background(), func() error { return nil })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 100, cb.GetStats().SuccessCount)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, 2, cfg.SuccessThreshold)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRequestsHalfOpen)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
