package llm

import "context"

// MaxAttempts bounds every generation call: one retry, then the caller fails
// with a typed error. Unbounded retry loops against a generation API hide
// systematic prompt or schema problems behind latency.
const MaxAttempts = 2

// Attempt runs fn up to MaxAttempts times and returns the first success. Both
// transport failures and post-call parse failures are retried the same way;
// the last error is returned when all attempts are exhausted. Context
// cancellation stops the loop immediately.
func Attempt[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 0; i < MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
