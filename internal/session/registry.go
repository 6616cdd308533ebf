package session

import (
	"sync"
	"time"
)

// Registry maps participant identity to its Session. Lookups go through a
// sync.Map so actions from different identities never block each other; the
// per-entry mutex only serialises the handful of operations one identity can
// trigger in quick succession.
type Registry struct {
	entries sync.Map // int64 -> *Session
	timeout time.Duration
	now     func() time.Time
}

func NewRegistry(timeout time.Duration, now func() time.Time) *Registry {
	if timeout <= 0 {
		timeout = PendingTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{timeout: timeout, now: now}
}

// Get returns the identity's session, creating it lazily on first use.
func (r *Registry) Get(id int64) *Session {
	if existing, ok := r.entries.Load(id); ok {
		return existing.(*Session)
	}
	fresh := &Session{now: r.now, timeout: r.timeout}
	actual, _ := r.entries.LoadOrStore(id, fresh)
	return actual.(*Session)
}

// Evict drops the identity's session entirely, navigation history included.
func (r *Registry) Evict(id int64) {
	r.entries.Delete(id)
}
