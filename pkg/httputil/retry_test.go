package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: errors.New("503")}

	tests := []struct {
		name      string
		attempts  int
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success", 3, 0, nil, 1, false},
		{"recovers", 3, 2, transient, 3, false},
		{"exhausted", 3, 5, transient, 3, true},
		{"permanent", 3, 5, errors.New("400"), 1, true},
		{"zero attempts runs once", 0, 0, nil, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("down")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryableErrorUnwrap(t *testing.T) {
	base := errors.New("reset")
	err := error(&RetryableError{Err: base})
	if !errors.Is(err, base) || err.Error() != "reset" {
		t.Errorf("unwrap failed: %v", err)
	}
}

func TestBackoffMaxDelay(t *testing.T) {
	b := Backoff{Attempts: 4, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	calls := 0
	start := time.Now()
	err := b.Do(context.Background(), func() error {
		calls++
		return Retryable(errors.New("busy"))
	})
	if err == nil || calls != 4 {
		t.Fatalf("calls = %d, err = %v", calls, err)
	}
	// 1ms + 2ms + 2ms of waiting; uncapped would be 7ms.
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 5ms", elapsed)
	}
}

func TestRetryableHelpers(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if !IsRetryable(fmt.Errorf("get: %w", Retryable(errors.New("reset")))) {
		t.Error("wrapped retryable not detected")
	}
	if IsRetryable(errors.New("400")) {
		t.Error("plain error reported retryable")
	}
}
