package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrUnavailable is returned when a network backend cannot be reached.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrUnsupportedURL is returned by [Open] for an unknown URL scheme.
	ErrUnsupportedURL = errors.New("unsupported cache url")
)

// RetryableError marks a failure worth another attempt, such as a refused
// connection while a backend is starting.
type RetryableError struct{ Err error }

// Retryable wraps err so [RetryWithBackoff] tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// connectAttempts bounds how often a backend is pinged before it is
// reported as unavailable.
const connectAttempts = 3

// retryDelay is the first backoff interval; tests shorten it.
var retryDelay = time.Second

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// [Retryable], or connectAttempts calls have failed. The wait doubles after
// each failure and is cut short by ctx.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt, delay := 1, retryDelay; ; attempt, delay = attempt+1, delay*2 {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == connectAttempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
