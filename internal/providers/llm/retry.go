package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type retrying struct {
	Provider
	attempts int
	initial  time.Duration
	max      time.Duration
}

// WithRetry retries failed Generate calls with jittered exponential backoff.
// It stops as soon as ctx is done, so a caller's timeout still bounds the
// whole call.
func WithRetry(p Provider, attempts int, initial, max time.Duration) Provider {
	if attempts <= 1 {
		return p
	}
	return &retrying{Provider: p, attempts: attempts, initial: initial, max: max}
}

func (r *retrying) Generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	bo := backoff.WithContext(r.newBackOff(), ctx)
	return backoff.RetryWithData(func() (string, error) {
		return r.Provider.Generate(ctx, prompt, schema)
	}, bo)
}

// newBackOff allows attempts-1 retries; the elapsed-time cap is left to ctx.
func (r *retrying) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = r.max
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(r.attempts-1))
}
