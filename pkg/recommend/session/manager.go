package session

import (
	"context"
	"sync"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/internal/repository/memory"
	"fashion-recommender-be/pkg/store"
)

const module = "SESSION"

// Manager owns the session registry: lazy creation, TTL sweep and the
// per-session lock that serializes turns.
//
// Stored sessions are never mutated in place. Get hands out a copy and Save
// replaces the stored value, so a turn that fails halfway leaves the
// registry untouched.
type Manager struct {
	sessionRepo *memory.SessionRepository
	logger      logger.ILogger
	now         func() time.Time

	mu    sync.Mutex
	locks map[string]*keyLock
}

// keyLock is held while its one-slot channel is full.
type keyLock struct {
	slot chan struct{}
	refs int
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new session manager
func NewManager(sessionRepo *memory.SessionRepository, log logger.ILogger, opts ...Option) *Manager {
	m := &Manager{
		sessionRepo: sessionRepo,
		logger:      log,
		now:         time.Now,
		locks:       make(map[string]*keyLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session for id, creating the default one on first use.
// Every call touches LastActive.
func (m *Manager) Get(sessionID string) *store.Session {
	now := m.now()
	session, found := m.sessionRepo.Get(sessionID)
	if found {
		session = session.Clone()
		session.LastActive = now
	} else {
		session = store.NewSession(sessionID, now)
		m.logger.Debug(module, "Session created", map[string]interface{}{"session_id": sessionID})
	}
	m.sessionRepo.Save(session)
	return session.Clone()
}

// Save commits a session produced by a successful turn.
func (m *Manager) Save(session *store.Session) {
	committed := session.Clone()
	committed.LastActive = m.now()
	m.sessionRepo.Save(committed)
}

// Reset replaces the session with a fresh default one.
func (m *Manager) Reset(sessionID string) *store.Session {
	session := store.NewSession(sessionID, m.now())
	m.sessionRepo.Save(session)
	m.logger.Info(module, "Session reset", map[string]interface{}{"session_id": sessionID})
	return session.Clone()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.sessionRepo.Count()
}

// Lock blocks until the caller owns sessionID and returns the release func.
// It gives up with ctx.Err() when ctx ends first.
func (m *Manager) Lock(ctx context.Context, sessionID string) (func(), error) {
	l := m.acquire(sessionID)

	select {
	case l.slot <- struct{}{}:
		return func() { m.release(sessionID, l) }, nil
	case <-ctx.Done():
		m.drop(sessionID, l)
		return nil, ctx.Err()
	}
}

func (m *Manager) tryLock(sessionID string) (func(), bool) {
	l := m.acquire(sessionID)

	select {
	case l.slot <- struct{}{}:
		return func() { m.release(sessionID, l) }, true
	default:
		m.drop(sessionID, l)
		return nil, false
	}
}

// acquire registers interest in sessionID's lock.
func (m *Manager) acquire(sessionID string) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[sessionID]
	if !ok {
		l = &keyLock{slot: make(chan struct{}, 1)}
		m.locks[sessionID] = l
	}
	l.refs++
	return l
}

func (m *Manager) release(sessionID string, l *keyLock) {
	<-l.slot
	m.drop(sessionID, l)
}

// drop forgets one registration and the entry with the last one.
func (m *Manager) drop(sessionID string, l *keyLock) {
	m.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, sessionID)
	}
	m.mu.Unlock()
}

// Sweep removes sessions idle longer than ttl. Sessions in the middle of a
// turn are skipped; they are active by definition.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)
	removed := 0

	for _, candidate := range m.sessionRepo.All() {
		if !candidate.LastActive.Before(cutoff) {
			continue
		}
		unlock, ok := m.tryLock(candidate.ID)
		if !ok {
			continue
		}
		// Re-read under the lock: a turn may have touched it since the snapshot.
		if current, found := m.sessionRepo.Get(candidate.ID); found && current.LastActive.Before(cutoff) {
			m.sessionRepo.Delete(candidate.ID)
			removed++
		}
		unlock()
	}

	if removed > 0 {
		m.logger.Info(module, "Expired sessions purged", map[string]interface{}{
			"removed":   removed,
			"remaining": m.sessionRepo.Count(),
		})
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep(ttl)
			}
		}
	}()
}
