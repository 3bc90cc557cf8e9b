package media

import (
	"context"
	"errors"
	"strings"
	"time"

	"shoplens/internal/llm"
)

// RetryPolicy retries an operation with exponential backoff. Whether a
// failure is retried is decided by Retryable; a nil classifier retries
// everything.
type RetryPolicy struct {
	MaxAttempts int           // Total attempts including the first
	BaseDelay   time.Duration // Delay before the second attempt
	Multiplier  float64       // Backoff growth factor
	Retryable   func(error) bool
}

// Do runs op until it succeeds, attempts are exhausted, the failure is
// classified non-retryable, or ctx is canceled during backoff.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
}

// IsRateLimited reports whether err looks like a quota or rate-limit
// rejection from a generation backend.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// imageRetryPolicy is the fixed policy for image generation: empty
// results and rate limiting are worth retrying, anything else aborts.
func imageRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2,
		Retryable: func(err error) bool {
			return errors.Is(err, llm.ErrNoImage) || IsRateLimited(err)
		},
	}
}
