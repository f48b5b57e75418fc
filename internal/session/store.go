package session

import (
	"sync"
	"time"

	"infiniteats/internal/errors"

	"github.com/google/uuid"
)

// Store keeps live sessions in memory. Idle sessions are evicted by a
// background sweep; when full, the least recently used session is dropped.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time
	done        chan struct{}
	closeOnce   sync.Once
	logger      *errors.Logger
}

// NewStore creates a store and starts its cleanup goroutine.
func NewStore(idleTimeout time.Duration, maxSessions int, logger *errors.Logger) *Store {
	st := newStore(idleTimeout, maxSessions, logger)

	interval := idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	go st.cleanupRoutine(interval)
	return st
}

func newStore(idleTimeout time.Duration, maxSessions int, logger *errors.Logger) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		maxSessions: maxSessions,
		now:         time.Now,
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Create registers a new session under a fresh id.
func (st *Store) Create() *Session {
	sess := New(uuid.NewString())

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		st.evictOldestLocked()
	}
	st.sessions[sess.id] = sess
	return sess
}

// Get returns the session for id, marking it used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}

	sess.mu.Lock()
	sess.lastSeen = st.now()
	sess.mu.Unlock()
	return sess, true
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Stats reports store occupancy for /stats.
func (st *Store) Stats() map[string]any {
	st.mu.Lock()
	defer st.mu.Unlock()
	return map[string]any{
		"active_sessions": len(st.sessions),
		"max_sessions":    st.maxSessions,
		"idle_timeout":    st.idleTimeout.String(),
	}
}

func (st *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range st.sessions {
		seen := sess.LastSeen()
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
		if st.logger != nil {
			st.logger.Debug("Evicted least recently used session", "session_id", oldestID)
		}
	}
}

func (st *Store) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st.cleanup()
		case <-st.done:
			return
		}
	}
}

// cleanup drops sessions idle for longer than the idle timeout.
func (st *Store) cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.LastSeen()) > st.idleTimeout {
			delete(st.sessions, id)
			removed++
		}
	}

	if st.logger != nil && removed > 0 {
		st.logger.Debug("Session cleanup completed",
			"removed", removed,
			"remaining_sessions", len(st.sessions))
	}
	return removed
}

// Close stops the cleanup goroutine.
func (st *Store) Close() {
	st.closeOnce.Do(func() { close(st.done) })
}
