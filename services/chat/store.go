package chat

import (
	"sync"
	"time"

	"omnisuite/models"

	"github.com/google/uuid"
)

// SessionStore abstracts session persistence. Implementations must be safe
// for concurrent use across sessions; Acquire provides the per-session
// serialization that keeps a whole turn (including the upstream call)
// single-writer.
type SessionStore interface {
	// Create installs a fresh StageInitial session under a new identifier
	// and returns it.
	Create() (*models.Session, error)
	// Get returns the session for id, or SessionNotFoundError if the
	// identifier is unknown or expired. It never auto-creates.
	Get(id string) (*models.Session, error)
	// AppendTurn appends to the session's history and truncates it to the
	// most recent historyWindow entries. Persisted by the next Save.
	AppendTurn(sess *models.Session, turn models.Turn)
	// Save persists mutations made to the session during a turn and
	// refreshes its idle TTL.
	Save(sess *models.Session) error
	// Acquire takes the session's turn lock. The returned func releases it.
	// Unknown identifiers yield a no-op release.
	Acquire(id string) func()
}

// appendBounded enforces the sliding history window on append.
func appendBounded(history []models.Turn, turn models.Turn) []models.Turn {
	history = append(history, turn)
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	return history
}

type memoryEntry struct {
	mu       sync.Mutex
	sess     *models.Session
	lastSeen time.Time
}

// MemorySessionStore keeps sessions in a process-wide map guarded by a
// read-write mutex, with a janitor goroutine evicting sessions idle past the
// configured TTL.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	s := &MemorySessionStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemorySessionStore) Create() (*models.Session, error) {
	sess := &models.Session{
		ID:      uuid.NewString(),
		History: []models.Turn{},
		Stage:   models.StageInitial,
	}
	s.mu.Lock()
	s.entries[sess.ID] = &memoryEntry{sess: sess, lastSeen: time.Now()}
	s.mu.Unlock()
	return sess, nil
}

func (s *MemorySessionStore) Get(id string) (*models.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, SessionNotFoundError{ID: id}
	}
	return entry.sess, nil
}

func (s *MemorySessionStore) AppendTurn(sess *models.Session, turn models.Turn) {
	sess.History = appendBounded(sess.History, turn)
}

func (s *MemorySessionStore) Save(sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sess.ID]
	if !ok {
		return SessionNotFoundError{ID: sess.ID}
	}
	entry.sess = sess
	entry.lastSeen = time.Now()
	return nil
}

func (s *MemorySessionStore) Acquire(id string) func() {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return func() {}
	}
	entry.mu.Lock()
	return entry.mu.Unlock
}

// Close stops the janitor goroutine.
func (s *MemorySessionStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemorySessionStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictExpired(time.Now())
		case <-s.stop:
			return
		}
	}
}

func (s *MemorySessionStore) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}
