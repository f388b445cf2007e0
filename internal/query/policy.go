package query

import "time"

// Policy maps the last fetched payload to the delay before the next fetch.
// ok is false when nothing has been fetched successfully yet. Zero stops
// polling.
type Policy[T any] func(data T, ok bool) time.Duration

// Fixed refetches every d regardless of the payload.
func Fixed[T any](d time.Duration) Policy[T] {
	return func(T, bool) time.Duration { return d }
}

// While refetches every d as long as active reports true. Until the first
// successful fetch it keeps retrying at d.
func While[T any](d time.Duration, active func(T) bool) Policy[T] {
	return func(data T, ok bool) time.Duration {
		if !ok || active(data) {
			return d
		}
		return 0
	}
}

// Never fetches once.
func Never[T any]() Policy[T] {
	return func(T, bool) time.Duration { return 0 }
}
