package common

import (
	"context"
	"time"
)

// Shared runs f on a context that keeps ctx values but not its
// cancellation, bounded by timeout instead. Results of f may be handed to
// other callers, so they must not fail because this caller went away.
// Shared itself returns ctx error as soon as ctx is done.
func Shared[T any](ctx context.Context, timeout time.Duration, f func(ctx context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		v, err := f(dctx)
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
