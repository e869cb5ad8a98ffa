package cache

import (
	"context"
	"errors"

	"github.com/blockprint/blockprint/pkg/httputil"
)

// Sentinel errors for cache backends.
var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned when a remote backend cannot be reached.
	ErrNetwork = errors.New("network error")
)

// Retryable marks a backend failure as transient.
func Retryable(err error) error { return httputil.Retryable(err) }

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool { return httputil.IsRetryable(err) }

// RetryWithBackoff retries remote backend calls on the default schedule.
// Only errors marked with Retryable are retried.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.RetryWithBackoff(ctx, fn)
}
