package state

import (
	"context"
	"sync"
	"time"
)

// MemStore keeps sessions in process memory with the same idle-expiry
// semantics as the Redis store. Used by tests and dev runs.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]memSession
	ttl      time.Duration
	now      func() time.Time
}

type memSession struct {
	session Session
	savedAt time.Time
}

func NewMemStore(idleExpiry time.Duration) *MemStore {
	if idleExpiry <= 0 {
		idleExpiry = defaultIdleExpiry
	}
	return &MemStore{
		sessions: make(map[string]memSession),
		ttl:      idleExpiry,
		now:      time.Now,
	}
}

func (s *MemStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.now().Sub(entry.savedAt) > s.ttl {
		delete(s.sessions, sessionID)
		return nil, ErrSessionNotFound
	}
	clone := entry.session
	clone.History = append([]string(nil), entry.session.History...)
	return &clone, nil
}

func (s *MemStore) Save(ctx context.Context, session *Session) error {
	if session == nil {
		return ErrNilSession
	}
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *session
	clone.History = append([]string(nil), session.History...)
	s.sessions[session.SessionID] = memSession{session: clone, savedAt: s.now()}
	return nil
}

func (s *MemStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
