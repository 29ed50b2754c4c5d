// Package fallback implements the ordered provider chain and the shared
// retry policy used by every external call site.
package fallback

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"quiz-shorts-pipeline/faults"
)

// Provider is one zero-argument operation in a chain.
type Provider[T any] struct {
	Name string
	Call func(ctx context.Context) (T, error)
}

// Execute tries providers strictly in order and returns the first success.
// Each failure is logged with its provider id and execution moves on; if
// all fail, the chain fails with an aggregate error wrapping the last
// failure. Individual providers are never retried here — retry wraps the
// whole chain via Retry.Do.
func Execute[T any](ctx context.Context, log zerolog.Logger, label string, providers []Provider[T]) (T, error) {
	var zero T
	if len(providers) == 0 {
		return zero, faults.Newf(faults.KindProvider, "%s chain has no providers", label)
	}

	var lastErr error
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return zero, faults.Wrapf(err, faults.KindProvider, "%s chain canceled", label)
		}
		start := time.Now()
		out, err := p.Call(ctx)
		if err == nil {
			log.Debug().Str("chain", label).Str("provider", p.Name).
				Dur("latency", time.Since(start)).Msg("provider succeeded")
			return out, nil
		}
		lastErr = err
		log.Warn().Str("chain", label).Str("provider", p.Name).Err(err).
			Msg("provider failed, trying next")
	}
	return zero, faults.Wrapf(lastErr, faults.KindProvider,
		"%s chain exhausted %d providers", label, len(providers))
}

// Retry is the reusable backoff policy shared by every external call site.
type Retry struct {
	Attempts int
	Base     time.Duration
	Cap      time.Duration
}

// Delay returns the backoff before the given 1-based attempt:
// min(Base * 2^(attempt-1), Cap). The first attempt has no delay.
func (r Retry) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := r.Base
	for i := 2; i < attempt; i++ {
		d *= 2
		if d >= r.Cap {
			return r.Cap
		}
	}
	if d > r.Cap {
		return r.Cap
	}
	return d
}

// Do runs fn up to r.Attempts times with exponential backoff between
// attempts, honoring ctx cancellation while sleeping.
func Do[T any](ctx context.Context, log zerolog.Logger, label string, r Retry, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if wait := r.Delay(attempt); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, faults.Wrapf(ctx.Err(), faults.KindProvider, "%s retry canceled", label)
			}
		}
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		log.Warn().Str("chain", label).Int("attempt", attempt).Int("max_attempts", attempts).
			Err(err).Msg("attempt failed")
	}
	// The exhaustion error keeps the last failure's classification so an
	// upload or render fault is still recognizable above the retry loop.
	kind := faults.KindOf(lastErr)
	if kind == faults.KindUnknown {
		kind = faults.KindProvider
	}
	return zero, faults.Wrapf(lastErr, kind,
		"%s failed after %d attempts", label, attempts)
}
