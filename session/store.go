// Package session keeps wizard sessions in memory, keyed by an id that the
// browser holds in a signed cookie. Sessions hold plaintext account
// passwords until checkout completes, so they are never written to disk.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"formationdesk/backend/wizard"
)

type entry struct {
	session   *wizard.Session
	expiresAt time.Time
}

// Store is safe for concurrent use. Get hands out copies; changes become
// visible only through Save.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, sessions: map[string]entry{}}
}

// Create starts and stores a fresh session.
func (s *Store) Create() *wizard.Session {
	sess := wizard.NewSession(uuid.NewString())
	s.Save(sess)
	return sess
}

// Get returns a copy of the session with id, if present and not expired.
// Like every access, it extends the session's lifetime.
func (s *Store) Get(id string) (*wizard.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	e.expiresAt = s.now().Add(s.ttl)
	s.sessions[id] = e
	return e.session.Clone(), true
}

// Save stores a copy of sess and extends its lifetime.
func (s *Store) Save(sess *wizard.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = entry{session: sess.Clone(), expiresAt: s.now().Add(s.ttl)}
}

// Update loads the session, applies fn and saves the result unless fn
// returns an error. The whole sequence holds the store lock.
func (s *Store) Update(id string, fn func(*wizard.Session) error) (*wizard.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false, nil
	}
	sess := e.session.Clone()
	if err := fn(sess); err != nil {
		return e.session.Clone(), true, err
	}
	s.sessions[id] = entry{session: sess.Clone(), expiresAt: s.now().Add(s.ttl)}
	return sess, true, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
