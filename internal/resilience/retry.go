package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy bounds how often and how patiently a call is repeated. It is
// used for directory API calls only; website fetches are never retried.
type RetryPolicy struct {
	// Attempts is the total number of calls including the first. 1 disables retries.
	Attempts int
	// Backoff is the delay before the first retry; each later retry doubles it.
	Backoff time.Duration
	// MaxBackoff caps a single delay.
	MaxBackoff time.Duration
	// Retryable decides whether an error is worth another attempt. Defaults to IsTransient.
	Retryable func(err error) bool
	// Name labels retry log lines.
	Name string
}

// DefaultRetryPolicy returns the policy used for directory API calls.
func DefaultRetryPolicy(name string) RetryPolicy {
	return RetryPolicy{
		Attempts:   3,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 8 * time.Second,
		Name:       name,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = 500 * time.Millisecond
	}
	if p.MaxBackoff < p.Backoff {
		p.MaxBackoff = p.Backoff
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	return p
}

// delay returns the wait before retry n (1-based) with up to 25% jitter either way.
func (p RetryPolicy) delay(n int) time.Duration {
	d := p.Backoff << (n - 1)
	if d <= 0 || d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	jitter := time.Duration((rand.Float64()*0.5 - 0.25) * float64(d))
	return max(0, d+jitter)
}

// Retry calls fn until it succeeds, returns a non-retryable error, the
// attempts are used up, or ctx is done. The last error is returned.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var (
		val T
		err error
	)
	for attempt := 1; ; attempt++ {
		val, err = fn(ctx)
		if err == nil || attempt >= p.Attempts || ctx.Err() != nil || !p.Retryable(err) {
			return val, err
		}

		zap.L().Warn("retrying call",
			zap.String("call", p.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		t := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return val, err
		case <-t.C:
		}
	}
}
