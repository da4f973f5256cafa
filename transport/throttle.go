package transport

import (
	"sync"
	"time"
)

// Limiter gates concurrent submissions. Acquire either claims a send slot or
// reports "busy" with the remaining cooldown; it never blocks. Release keeps
// the slot occupied for the trailing cooldown before freeing it.
type Limiter interface {
	Acquire(userID int64) (remaining time.Duration, ok bool)
	Release(userID int64)
}

// UserThrottle holds one slot per user: the slot spans the in-flight send
// plus a trailing cooldown, so a second concurrent submission from the same
// user observes "busy" rather than blocking. The map itself is guarded by a
// coarse lock held only for bookkeeping, never across a send.
type UserThrottle struct {
	Delay time.Duration

	mu     sync.Mutex
	starts map[int64]time.Time
}

func NewUserThrottle(delay time.Duration) *UserThrottle {
	return &UserThrottle{
		Delay:  delay,
		starts: make(map[int64]time.Time),
	}
}

func (t *UserThrottle) Acquire(userID int64) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if start, ok := t.starts[userID]; ok {
		remaining := t.Delay - time.Since(start)
		if remaining < 0 {
			remaining = 0
		}
		return remaining, false
	}
	t.starts[userID] = time.Now()
	return 0, true
}

func (t *UserThrottle) Release(userID int64) {
	t.mu.Lock()
	start, ok := t.starts[userID]
	t.mu.Unlock()
	if !ok {
		return
	}
	remaining := t.Delay - time.Since(start)
	if remaining <= 0 {
		t.remove(userID)
		return
	}
	time.AfterFunc(remaining, func() { t.remove(userID) })
}

func (t *UserThrottle) remove(userID int64) {
	t.mu.Lock()
	delete(t.starts, userID)
	t.mu.Unlock()
}

// GlobalSlowmode serializes all qualifying sends through one process-wide
// slot instead of per-user slots.
type GlobalSlowmode struct {
	Delay time.Duration

	mu      sync.Mutex
	started *time.Time
}

func NewGlobalSlowmode(delay time.Duration) *GlobalSlowmode {
	return &GlobalSlowmode{Delay: delay}
}

func (s *GlobalSlowmode) Acquire(userID int64) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started != nil {
		remaining := s.Delay - time.Since(*s.started)
		if remaining < 0 {
			remaining = 0
		}
		return remaining, false
	}
	now := time.Now()
	s.started = &now
	return 0, true
}

func (s *GlobalSlowmode) Release(userID int64) {
	s.mu.Lock()
	start := s.started
	s.mu.Unlock()
	if start == nil {
		return
	}
	remaining := s.Delay - time.Since(*start)
	if remaining <= 0 {
		s.clear()
		return
	}
	time.AfterFunc(remaining, s.clear)
}

func (s *GlobalSlowmode) clear() {
	s.mu.Lock()
	s.started = nil
	s.mu.Unlock()
}
