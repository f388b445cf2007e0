// Package query caches backend reads by semantic key and drives their
// refetch schedules.
//
// A Cache keeps the last committed result per key. Concurrent identical
// fetches share one request. Every request is stamped with a per-key
// generation, and a response older than the committed one is reported as
// superseded instead of overwriting newer data.
package query

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies one cached read, e.g. "research-jobs" or "research-job/<id>".
type Key string

// KeyOf joins a kind and its identifying parts into a Key.
func KeyOf(kind string, parts ...string) Key {
	if len(parts) == 0 {
		return Key(kind)
	}
	return Key(kind + "/" + strings.Join(parts, "/"))
}

// HasPrefix reports whether k equals prefix or lies below it.
func (k Key) HasPrefix(prefix Key) bool {
	if k == prefix {
		return true
	}
	return strings.HasPrefix(string(k), string(prefix)+"/")
}

// Entry is one cache snapshot.
type Entry struct {
	Data      any
	Err       error // error of the most recent committed fetch
	UpdatedAt time.Time
	OK        bool // Data holds a successfully fetched value
	Stale     bool // invalidated since the last successful fetch

	// Superseded is set on a fetch result that arrived after a newer one
	// was committed. Such results are never stored.
	Superseded bool
}

type entry struct {
	Entry
	gen     uint64 // generation of the committed result
	removed bool
}

// FetchFunc performs the underlying read for a key.
type FetchFunc func(ctx context.Context) (any, error)

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	group   singleflight.Group
	entries map[Key]*entry
	issued  map[Key]uint64 // last generation handed out
	epoch   map[Key]uint64 // bumped to detach in-flight calls from new ones
	now     func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
		issued:  make(map[Key]uint64),
		epoch:   make(map[Key]uint64),
		now:     time.Now,
	}
}

// Fetch runs fn for key, sharing the call with any identical request
// already in flight. The returned Entry reflects the cache after the
// result was applied, or the raw result flagged Superseded when a newer
// one was already committed.
func (c *Cache) Fetch(ctx context.Context, key Key, fn FetchFunc) Entry {
	v, _, _ := c.group.Do(c.flightKey(key), func() (any, error) {
		gen := c.nextGen(key)
		data, err := fn(ctx)
		return c.commit(key, gen, data, err), nil
	})
	return v.(Entry)
}

func (c *Cache) flightKey(key Key) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(key) + "#" + strconv.FormatUint(c.epoch[key], 10)
}

func (c *Cache) nextGen(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued[key]++
	return c.issued[key]
}

func (c *Cache) commit(key Key, gen uint64, data any, err error) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	if gen <= e.gen {
		return Entry{Data: data, Err: err, UpdatedAt: c.now(), OK: err == nil, Superseded: true}
	}

	e.gen = gen
	e.removed = false
	e.Err = err
	if err == nil {
		e.Data = data
		e.OK = true
		e.Stale = false
		e.UpdatedAt = c.now()
	}
	return e.Entry
}

// Peek returns the last committed snapshot for key without fetching.
func (c *Cache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.removed {
		return Entry{}, false
	}
	return e.Entry, true
}

// Invalidate marks every entry at or below prefix stale and detaches
// in-flight calls, so the next Fetch issues a fresh request whose result
// supersedes any straggler.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	var keys []Key
	for k, e := range c.entries {
		if k.HasPrefix(prefix) {
			e.Stale = true
			keys = append(keys, k)
		}
	}
	for k := range c.issued {
		if k.HasPrefix(prefix) && c.entries[k] == nil {
			keys = append(keys, k)
		}
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.detach(k)
	}
}

// Remove drops key. Responses still in flight for it are discarded.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	c.entries[key] = &entry{gen: c.issued[key], removed: true}
	c.mu.Unlock()
	c.detach(key)
}

func (c *Cache) detach(key Key) {
	c.mu.Lock()
	old := string(key) + "#" + strconv.FormatUint(c.epoch[key], 10)
	c.epoch[key]++
	c.mu.Unlock()
	c.group.Forget(old)
}
