package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoRetryStrategyExecutesOnce(t *testing.T) {
	strategy := NewNoRetryStrategy()

	calls := 0
	err := strategy.Execute(context.Background(), func() error {
		calls++
		return errors.New("connection refused")
	})

	if err == nil {
		t.Error("Expected the error to be returned")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestExponentialBackoffRetriesRecoverableErrors(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(3, time.Millisecond, 5*time.Millisecond)

	calls := 0
	err := strategy.Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp 127.0.0.1:8000: connection refused")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected success after retries, got: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestExponentialBackoffStopsOnNonRecoverableError(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(3, time.Millisecond, 5*time.Millisecond)

	calls := 0
	err := strategy.Execute(context.Background(), func() error {
		calls++
		return errors.New("invalid account id")
	})

	if err == nil {
		t.Error("Expected the error to be returned")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for a non-recoverable error, got %d", calls)
	}
}

func TestExponentialBackoffExhaustsRetries(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(2, time.Millisecond, 5*time.Millisecond)

	calls := 0
	err := strategy.Execute(context.Background(), func() error {
		calls++
		return errors.New("i/o timeout")
	})

	if err == nil {
		t.Error("Expected an error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls (1 initial + 2 retries), got %d", calls)
	}
}

func TestExponentialBackoffRespectsContextCancellation(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(5, time.Second, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- strategy.Execute(ctx, func() error {
			calls++
			return errors.New("connection reset by peer")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Execute did not return after context cancellation")
	}

	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", calls)
	}
}

func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		recoverable bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"timeout", errors.New("request timeout exceeded"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"no such host", errors.New("lookup horizon.example.org: no such host"), true},
		{"bad gateway", errors.New("horizon responded with status 502"), true},
		{"service unavailable", errors.New("horizon responded with status 503"), true},
		{"not found", errors.New("account not found"), false},
		{"bad request", errors.New("malformed account id"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRecoverableError(tt.err); got != tt.recoverable {
				t.Errorf("isRecoverableError(%v) = %v, expected %v", tt.err, got, tt.recoverable)
			}
		})
	}
}

func TestNewStrategySelection(t *testing.T) {
	if s := NewStrategy(Config{Enabled: false}); s.Name() != "NoRetry" {
		t.Errorf("Expected NoRetry strategy, got %s", s.Name())
	}
	if s := NewStrategy(Config{Enabled: true, MaxRetries: 2}); s.Name() != "ExponentialBackoff" {
		t.Errorf("Expected ExponentialBackoff strategy, got %s", s.Name())
	}
}
