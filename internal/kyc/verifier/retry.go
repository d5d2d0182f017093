package verifier

import "context"

// RetryOnce runs fn and, when the failure is retryable, runs it exactly one more
// time. Non-retryable failures and a canceled context return immediately.
func RetryOnce[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	out, err := fn(ctx)
	if err == nil || !IsRetryable(err) || ctx.Err() != nil {
		return out, err
	}
	return fn(ctx)
}
