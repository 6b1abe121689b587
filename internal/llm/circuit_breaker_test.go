package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(CircuitBreakerConfig{
		MaxFailures:          3,
		Timeout:              time.Minute,
		HalfOpenMaxSuccesses: 1,
	})
	ctx := context.Background()
	boom := errors.New("backend down")

	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(ctx, func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}

	if cb.State() != "open" {
		t.Fatalf("state = %q, want open after 3 consecutive failures", cb.State())
	}

	_, err := cb.Execute(ctx, func() (interface{}, error) { return "ok", nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen while open", err)
	}
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	cb := NewCircuitBreaker()

	result, err := cb.Execute(context.Background(), func() (interface{}, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(string) != "ok" {
		t.Errorf("result = %v, want ok", result)
	}
	if cb.State() != "closed" {
		t.Errorf("state = %q, want closed", cb.State())
	}
}

func TestCircuitBreakerRespectsCancelledContext(t *testing.T) {
	cb := NewCircuitBreaker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := cb.Execute(ctx, func() (interface{}, error) { called = true; return nil, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if called {
		t.Error("function must not run with a cancelled context")
	}
}
