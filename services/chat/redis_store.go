package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"omnisuite/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "chat:session:"

// RedisSessionStore persists sessions as JSON values with a key TTL refreshed
// on every save, so expiry falls out of Redis itself. Turn serialization is a
// process-local keyed mutex; a multi-writer deployment would need a
// distributed lock instead.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *RedisSessionStore) Create() (*models.Session, error) {
	sess := &models.Session{
		ID:      uuid.NewString(),
		History: []models.Turn{},
		Stage:   models.StageInitial,
	}
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisSessionStore) Get(id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, SessionNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisSessionStore) AppendTurn(sess *models.Session, turn models.Turn) {
	sess.History = appendBounded(sess.History, turn)
}

func (s *RedisSessionStore) Save(sess *models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.client.Set(ctx, sessionKeyPrefix+sess.ID, b, s.ttl).Err()
}

// Acquire returns the per-session lock, creating it on first use. Locks are
// never reclaimed; the map grows with distinct session IDs seen by this
// process, same trade-off as the per-IP rate limiter.
func (s *RedisSessionStore) Acquire(id string) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
