package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintech/internal/cache"
)

var (
	// ErrSuperseded is returned to a call that a newer call on the same
	// session replaced. Its answer is discarded.
	ErrSuperseded = errors.New("superseded by a newer message")
	// ErrClosed is returned by calls on, or in flight during Close of, a
	// closed session.
	ErrClosed = errors.New("session closed")
)

// Session is one conversation. Only the latest call's answer is delivered.
type Session struct {
	id string
	a  *Assistant
	// touch renews the session's idle deadline in its registry.
	touch func()

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
	closed bool
}

func newSession(id string, a *Assistant) *Session {
	return &Session{id: id, a: a, touch: func() {}}
}

func (s *Session) ID() string { return s.id }

// Ask cancels any call still in flight on this session and answers message.
func (s *Session) Ask(ctx context.Context, message string) (Reply, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Reply{}, ErrClosed
	}
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	s.seq++
	mine := s.seq
	cctx, cancel := context.WithCancelCause(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.touch()
	reply, err := s.a.ask(cctx, s.id, message)
	cause := context.Cause(cctx)
	cancel(nil)
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == mine {
		s.cancel = nil
	}
	switch {
	case s.closed:
		return Reply{}, ErrClosed
	case s.seq != mine || errors.Is(cause, ErrSuperseded):
		return Reply{}, ErrSuperseded
	case err != nil:
		return Reply{}, err
	}
	return reply, nil
}

// Closed reports whether the session was dismissed or expired.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close dismisses the session. A call in flight returns ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel(ErrClosed)
		s.cancel = nil
	}
}

// Sessions keeps recently used sessions. Entries idle longer than the TTL,
// or pushed out by newer ones, are closed.
type Sessions struct {
	a     *Assistant
	mu    sync.Mutex
	cache *cache.LRUCache[*Session]
}

func NewSessions(a *Assistant, maxSize int, ttl time.Duration) *Sessions {
	c := cache.NewLRUCache[*Session](maxSize, ttl)
	c.OnEvict(func(_ string, s *Session) { s.Close() })
	return &Sessions{a: a, cache: c}
}

// Get returns the session with id, or a new session when id is empty,
// malformed or unknown.
func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := uuid.Parse(id); err == nil {
		if s, ok := r.cache.Get(id); ok {
			r.cache.Touch(id)
			return s
		}
	}
	s := newSession(uuid.NewString(), r.a)
	s.touch = func() { r.cache.Touch(s.id) }
	r.cache.Set(s.id, s)
	return s
}

// Close closes and forgets the session with id.
func (r *Sessions) Close(id string) {
	r.cache.Delete(id)
}

func (r *Sessions) Len() int { return r.cache.Size() }

// Cleaner exposes the session cache to a cache.Manager.
func (r *Sessions) Cleaner() cache.Cleaner { return r.cache }
