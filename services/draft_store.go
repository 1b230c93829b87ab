package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// DraftStore persists one onboarding draft per user.
type DraftStore interface {
	Load(ctx context.Context, userID string) (*Draft, error)
	Save(ctx context.Context, userID string, d *Draft) error
	Delete(ctx context.Context, userID string) error
}

type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(userID string) string {
	return "onboarding:draft:" + userID
}

func (s *RedisDraftStore) Load(ctx context.Context, userID string) (*Draft, error) {
	data, err := s.client.Get(ctx, draftKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, userID string, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(userID), data, s.ttl).Err()
}

func (s *RedisDraftStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, draftKey(userID)).Err()
}

// MemoryDraftStore keeps drafts in process. Drafts are lost on restart.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]Draft)}
}

func (s *MemoryDraftStore) Load(_ context.Context, userID string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[userID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *MemoryDraftStore) Save(_ context.Context, userID string, d *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = *d
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	return nil
}
