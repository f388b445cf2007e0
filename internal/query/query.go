package query

import (
	"context"
	"fmt"
	"time"
)

// Query describes a typed read: where it is cached, how to fetch it and
// when to fetch it again.
type Query[T any] struct {
	Key     Key
	Fetch   func(ctx context.Context) (T, error)
	Refetch Policy[T]
}

// Result is a typed cache snapshot.
type Result[T any] struct {
	Data       T
	Err        error
	UpdatedAt  time.Time
	OK         bool
	Stale      bool
	Superseded bool
}

// Next returns the delay before r should be refetched. Zero means stop.
func (q Query[T]) Next(r Result[T]) time.Duration {
	if q.Refetch == nil {
		return 0
	}
	return q.Refetch(r.Data, r.OK)
}

// Run fetches q through c.
func Run[T any](ctx context.Context, c *Cache, q Query[T]) Result[T] {
	e := c.Fetch(ctx, q.Key, func(ctx context.Context) (any, error) {
		return q.Fetch(ctx)
	})
	return typed[T](q.Key, e)
}

// Peek returns the last committed snapshot for key as T.
func Peek[T any](c *Cache, key Key) (Result[T], bool) {
	e, ok := c.Peek(key)
	if !ok {
		return Result[T]{}, false
	}
	return typed[T](key, e), true
}

func typed[T any](key Key, e Entry) Result[T] {
	r := Result[T]{
		Err:        e.Err,
		UpdatedAt:  e.UpdatedAt,
		Stale:      e.Stale,
		Superseded: e.Superseded,
	}
	if !e.OK {
		return r
	}
	data, ok := e.Data.(T)
	if !ok {
		r.Err = fmt.Errorf("query %s: cached %T, want %T", key, e.Data, data)
		return r
	}
	r.Data = data
	r.OK = true
	return r
}
