package llm

import (
	"errors"
	"fmt"
)

// AuthError indicates a missing or rejected API credential. It is fatal and
// never retried.
type AuthError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s auth error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s auth error: %s", e.Provider, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// RateLimitError indicates the provider rejected the call due to rate
// limiting. Retryable with backoff.
type RateLimitError struct {
	Provider Provider
	Cause    error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Provider, e.Cause)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates the call did not complete in time. Retryable.
type TimeoutError struct {
	Provider Provider
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out: %v", e.Provider, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError indicates the provider returned output the caller
// cannot use (empty candidates, missing text parts). Not retryable; the
// caller must treat the current call as having produced no usable output.
type MalformedResponseError struct {
	Provider Provider
	Message  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s malformed response: %s", e.Provider, e.Message)
}

// Retryable reports whether err is a transient gateway error worth retrying.
func Retryable(err error) bool {
	var rateLimit *RateLimitError
	var timeout *TimeoutError
	return errors.As(err, &rateLimit) || errors.As(err, &timeout)
}
