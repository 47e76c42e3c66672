package memory

import (
	"context"
	"sync"

	domainauth "staybook/internal/domain/auth"
)

// SessionStore keeps live sessions in a map; expiry is enforced by the
// auth service on resolve.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domainauth.Token]domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[domainauth.Token]domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
