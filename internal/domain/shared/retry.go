package shared

import "context"

// DefaultMaxConflictRetries bounds optimistic-lock retries
const DefaultMaxConflictRetries = 5

// RetryOnConflict runs fn until it succeeds, fails with something other than
// CONCURRENCY_CONFLICT, or attempts run out. Each attempt must re-read the
// aggregate it modifies.
func RetryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = DefaultMaxConflictRetries
	}
	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if !IsCode(err, CodeConcurrencyConflict) {
			return err
		}
	}
	return err
}
