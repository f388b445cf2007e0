package query

import "sync"

// Tracker keeps at most one live poll chain per key. A chain carries the
// token it was armed with and stops as soon as that token is no longer
// current.
type Tracker struct {
	mu     sync.Mutex
	next   uint64
	tokens map[Key]uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{tokens: make(map[Key]uint64)}
}

// Arm starts a new chain for key, superseding any older one.
func (t *Tracker) Arm(key Key) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.tokens[key] = t.next
	return t.next
}

// Live reports whether token is still the current chain for key.
func (t *Tracker) Live(key Key, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.tokens[key]
	return ok && cur == token
}

// Armed reports whether key has a live chain.
func (t *Tracker) Armed(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tokens[key]
	return ok
}

// Disarm stops the chain for key.
func (t *Tracker) Disarm(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokens, key)
}

// DisarmPrefix stops every chain at or below prefix.
func (t *Tracker) DisarmPrefix(prefix Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.tokens {
		if k.HasPrefix(prefix) {
			delete(t.tokens, k)
		}
	}
}
