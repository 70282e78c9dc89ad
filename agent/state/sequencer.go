package state

import "sync"

// Sequencer serializes request handling per session ID so conversational
// memory stays consistent: requests for one session run in arrival order,
// requests for distinct sessions run in parallel.
type Sequencer struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSequencer() *Sequencer {
	return &Sequencer{locks: make(map[string]*sessionLock)}
}

// Acquire blocks until the session's slot is free and returns the release
// function. The per-session lock is dropped from the map once nobody waits on
// it, so idle sessions cost nothing.
func (s *Sequencer) Acquire(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.mu.Unlock()
			s.mu.Lock()
			lock.refs--
			if lock.refs == 0 {
				delete(s.locks, sessionID)
			}
			s.mu.Unlock()
		})
	}
}
