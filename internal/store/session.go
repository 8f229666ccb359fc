package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/echosim/internal/session"
	"github.com/google/uuid"
)

// SessionStore keeps live sessions in process memory. Runs are not
// persisted; a restart drops them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*session.Session)}
}

func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID]; exists {
		return ErrConflict
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes the session and returns it so the caller can close it.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.sessions, id)
	return sess, nil
}

// List returns all sessions, oldest first.
func (s *SessionStore) List(ctx context.Context) ([]*session.Session, error) {
	s.mu.RLock()
	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// DeleteIdle removes sessions that are paused and have not been accessed
// since cutoff, and returns them.
func (s *SessionStore) DeleteIdle(ctx context.Context, cutoff time.Time) ([]*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*session.Session
	for id, sess := range s.sessions {
		if sess.Running() || sess.LastAccess().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed = append(removed, sess)
	}
	return removed, nil
}
