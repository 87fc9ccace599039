// Package stores provides concrete cache store implementations
package stores

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

// ErrSessionLimit is returned when the store is full and every session is
// busy or holds unsaved changes.
var ErrSessionLimit = errors.New("editor session limit reached")

// SessionsStore caches open editor sessions by document id.
type SessionsStore struct {
	sessions map[string]*types.EditorSession
	capacity int
	mu       sync.RWMutex
	logger   *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions cache store. capacity <= 0 means unbounded.
func NewSessionsStore(capacity int, logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Editor().Info("Initializing editor sessions store", "capacity", capacity)
	}
	return &SessionsStore{
		sessions: make(map[string]*types.EditorSession),
		capacity: capacity,
		logger:   logger,
	}
}

// Get returns the session for documentID and marks it as recently used.
func (ss *SessionsStore) Get(documentID string) (*types.EditorSession, bool) {
	ss.mu.RLock()
	s, ok := ss.sessions[documentID]
	ss.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Add stores a session. When the store is full the least recently used
// clean, idle session is evicted to make room. If another caller added the
// same document first, that session is returned instead.
func (ss *SessionsStore) Add(documentID string, session *types.EditorSession) (*types.EditorSession, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if existing, ok := ss.sessions[documentID]; ok {
		existing.Touch()
		return existing, nil
	}
	if ss.capacity > 0 && len(ss.sessions) >= ss.capacity {
		if !ss.evictOneLocked() {
			return nil, ErrSessionLimit
		}
	}
	ss.sessions[documentID] = session
	return session, nil
}

func (ss *SessionsStore) evictOneLocked() bool {
	var (
		victim string
		oldest time.Time
	)
	for id, s := range ss.sessions {
		if !s.Mu.TryLock() {
			continue
		}
		evictable := !s.Dirty && !s.Generating()
		s.Mu.Unlock()
		if !evictable {
			continue
		}
		if victim == "" || s.LastAccess().Before(oldest) {
			victim, oldest = id, s.LastAccess()
		}
	}
	if victim == "" {
		return false
	}
	delete(ss.sessions, victim)
	if ss.logger != nil {
		ss.logger.Editor().Info("Evicted least recently used session", "documentId", victim, "lastAccess", oldest)
	}
	return true
}

// Remove drops a session from the store.
func (ss *SessionsStore) Remove(documentID string) {
	ss.mu.Lock()
	delete(ss.sessions, documentID)
	ss.mu.Unlock()
}

// IDs returns the open document ids in sorted order.
func (ss *SessionsStore) IDs() []string {
	ss.mu.RLock()
	ids := make([]string, 0, len(ss.sessions))
	for id := range ss.sessions {
		ids = append(ids, id)
	}
	ss.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of open sessions.
func (ss *SessionsStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Idle returns the ids of sessions without activity for at least ttl.
func (ss *SessionsStore) Idle(ttl time.Duration) []string {
	cutoff := time.Now().UTC().Add(-ttl)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	var ids []string
	for id, s := range ss.sessions {
		if s.LastAccess().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
