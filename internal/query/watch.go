package query

import (
	"context"
	"time"
)

// Watch runs q repeatedly, handing every result to onResult, until the
// refetch policy returns zero, ctx ends, or onResult returns an error.
// A context error is returned as is; a stop by policy returns nil.
func Watch[T any](ctx context.Context, c *Cache, q Query[T], onResult func(Result[T]) error) error {
	for {
		r := Run(ctx, c, q)
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onResult(r); err != nil {
			return err
		}

		d := q.Next(r)
		if d <= 0 {
			return nil
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
