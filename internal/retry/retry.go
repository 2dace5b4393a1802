package retry

import (
	"context"
	"time"
)

// Executor runs operations with a bounded number of attempts and a constant
// delay between them. There is no backoff growth.
type Executor struct {
	sleep func(time.Duration)
}

func New() *Executor {
	return &Executor{sleep: time.Sleep}
}

// Do invokes op up to maxAttempts times, sleeping for delay between a failed
// attempt and the next one. It returns nil on the first success and the last
// attempt's error once the budget is exhausted. op must be safe to re-invoke.
func (e *Executor) Do(ctx context.Context, maxAttempts int, delay time.Duration, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
		if attempt < maxAttempts {
			e.sleep(delay)
		}
	}
	return lastErr
}
