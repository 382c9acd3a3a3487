// internal/service/aggregation/throttle.go

package aggregation

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultQueryInterval is the spacing between consecutive search queries
const DefaultQueryInterval = 150 * time.Millisecond

// Throttle paces sequential upstream calls
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows one call per interval with a burst of one. A
// non-positive interval disables pacing.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return NewThrottleWithLimiter(rate.NewLimiter(rate.Inf, 1))
	}
	return NewThrottleWithLimiter(rate.NewLimiter(rate.Every(interval), 1))
}

// NewThrottleWithLimiter wraps an existing limiter
func NewThrottleWithLimiter(limiter *rate.Limiter) *Throttle {
	return &Throttle{limiter: limiter}
}

// Each calls fn for every element in order, waiting for the limiter before
// each call. It stops early and returns the context error on cancellation.
func Each[T any](ctx context.Context, t *Throttle, elems []T, fn func(ctx context.Context, elem T)) error {
	for _, elem := range elems {
		if err := t.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		fn(ctx, elem)
	}
	return nil
}
