package ai

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 2 * time.Second
	defaultMaxBackoff     = 10 * time.Second
)

// RetryPolicy bounds how often a transient failure is retried.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type retrying struct {
	next   Diagnoser
	policy RetryPolicy
}

// WithRetry retries rate-limit and server errors with exponential backoff.
func WithRetry(next Diagnoser, policy RetryPolicy) Diagnoser {
	if next == nil {
		return nil
	}
	if policy.Attempts <= 0 {
		policy.Attempts = defaultMaxRetries
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = defaultInitialBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = defaultMaxBackoff
	}
	return &retrying{next: next, policy: policy}
}

func (r *retrying) Enabled() bool {
	return r.next.Enabled()
}

func (r *retrying) Diagnose(ctx context.Context, input DiagnosisInput) (string, error) {
	if !r.next.Enabled() {
		return "", ErrDisabled
	}
	delay := r.policy.InitialBackoff
	var lastErr error
	for attempt := 0; attempt < r.policy.Attempts; attempt++ {
		text, err := r.next.Diagnose(ctx, input)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !shouldRetry(err) {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > r.policy.MaxBackoff {
			delay = r.policy.MaxBackoff
		}
	}
	return "", lastErr
}

func shouldRetry(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	return false
}
