// Package session holds the per-participant conversational state: the
// pending multi-step expectation, the current screen and the bounded
// navigation history. Everything lives in memory; entries are evicted
// explicitly and pending expectations decay after a soft timeout.
package session

import (
	"sync"
	"time"

	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
	"support-bot-backend/internal/view"
)

type State string

const (
	StateIdle                      State = "idle"
	StateAwaitingTicketDescription State = "awaiting_ticket_description"
	StateAwaitingAdminReply        State = "awaiting_admin_reply"
	StateAwaitingUserReply         State = "awaiting_user_reply"
)

// PendingTimeout is how long a reply/description expectation stays valid.
const PendingTimeout = 180 * time.Second

// StackDepth bounds the navigation history; the oldest entry is dropped
// beyond it.
const StackDepth = 20

// Pending is the context of an expectation placed on the next submission.
type Pending struct {
	State      State
	Category   string
	TicketID   string
	Recipient  int64
	Origin     transport.Location
	ListPage   int
	ListStatus model.TicketStatus
	StartedAt  time.Time
}

// Session is owned by exactly one participant identity. Its mutex only
// guards this entry, never the registry.
type Session struct {
	mu      sync.Mutex
	now     func() time.Time
	timeout time.Duration

	pending    *Pending
	current    view.ID
	hasCurrent bool
	nav        []view.ID
}

// SetPending installs a new expectation, replacing any previous one: a
// session carries at most one open expectation at a time.
func (s *Session) SetPending(p Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.StartedAt = s.now()
	s.pending = &p
}

// Pending returns the live expectation, applying the soft timeout: an
// expectation older than the timeout is discarded and the session reads as
// idle.
func (s *Session) Pending() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Pending{}, false
	}
	if s.now().Sub(s.pending.StartedAt) > s.timeout {
		s.pending = nil
		return Pending{}, false
	}
	return *s.pending, true
}

func (s *Session) ClearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// SetView records v as the current navigable screen, pushing the previous
// one. Re-rendering the same screen does not grow the stack.
func (s *Session) SetView(v view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCurrent {
		s.current = v
		s.hasCurrent = true
		return
	}
	if s.current == v {
		return
	}
	s.nav = append(s.nav, s.current)
	if len(s.nav) > StackDepth {
		s.nav = s.nav[len(s.nav)-StackDepth:]
	}
	s.current = v
}

// ReplaceView overwrites the current screen without touching the stack.
// Used after a pop when the rebuilt screen resolves to an adjusted id,
// such as a list page clamped after tickets were removed.
func (s *Session) ReplaceView(v view.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = v
	s.hasCurrent = true
}

// PopView steps back to the previously rendered screen. The bool is false
// when the stack is empty; callers then fall back to the top-level menu.
func (s *Session) PopView() (view.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.nav) == 0 {
		s.hasCurrent = false
		return view.ID{}, false
	}
	top := s.nav[len(s.nav)-1]
	s.nav = s.nav[:len(s.nav)-1]
	s.current = top
	s.hasCurrent = true
	return top, true
}

// CurrentView returns the last rendered navigable screen.
func (s *Session) CurrentView() (view.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

// Depth reports the navigation stack size.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nav)
}
