package history

import (
	"sync"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/model"
)

// MaxTurns limita o histórico por sessão; turnos mais antigos são descartados (FIFO)
const MaxTurns = 20

// Store is an in-memory, session-keyed conversation history store.
// Sessions idle beyond the TTL are evicted by a background cleanup loop.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	stopChan chan struct{}
}

type session struct {
	turns    []model.ConversationTurn
	lastSeen time.Time
}

// NewStore creates a new history store with the specified idle TTL
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	// Start cleanup goroutine
	go s.cleanup()

	return s
}

// Append adds a turn to the session, evicting the oldest turn beyond MaxTurns
func (s *Store) Append(sessionID string, role model.TurnRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		sess = &session{}
		s.sessions[sessionID] = sess
	}

	sess.turns = append(sess.turns, model.ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(sess.turns) > MaxTurns {
		sess.turns = sess.turns[len(sess.turns)-MaxTurns:]
	}
	sess.lastSeen = time.Now()
}

// List returns a copy of the session's turns, newest last.
// size <= 0 returns all turns; otherwise the size most recent.
func (s *Store) List(sessionID string, size int) []model.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		return nil
	}

	turns := sess.turns
	if size > 0 && size < len(turns) {
		turns = turns[len(turns)-size:]
	}

	out := make([]model.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Len returns the number of turns in a session
func (s *Store) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, exists := s.sessions[sessionID]; exists {
		return len(sess.turns)
	}
	return 0
}

// Clear removes a session's history entirely
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// SessionCount returns the number of live sessions
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Stop stops the cleanup goroutine
func (s *Store) Stop() {
	close(s.stopChan)
}

// cleanup periodically removes idle sessions
func (s *Store) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeIdle()
		case <-s.stopChan:
			return
		}
	}
}

// removeIdle removes all sessions idle beyond the TTL
func (s *Store) removeIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
