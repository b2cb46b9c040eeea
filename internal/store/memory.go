package store

import (
	"context"
	"sort"
	"sync"

	"github.com/assist-link/support-agent/internal/model"
)

// MemoryStore is an in-memory Store. State lives for the process lifetime
// only; durability across restarts is out of scope.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*model.Conversation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*model.Conversation),
	}
}

// Get returns a copy of the conversation, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	s.mu.RLock()
	conv, exists := s.conversations[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	return conv.Clone(), nil
}

// Put stores a copy of the conversation, replacing any existing record.
func (s *MemoryStore) Put(ctx context.Context, conv *model.Conversation) error {
	s.mu.Lock()
	s.conversations[conv.ID] = conv.Clone()
	s.mu.Unlock()
	return nil
}

// List returns copies of all conversations, most recently created first.
func (s *MemoryStore) List(ctx context.Context) ([]*model.Conversation, error) {
	s.mu.RLock()
	convs := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convs = append(convs, conv.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(convs, func(i, j int) bool {
		if convs[i].CreatedAt.Equal(convs[j].CreatedAt) {
			// UUIDv7 IDs sort in creation order.
			return convs[i].ID > convs[j].ID
		}
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})
	return convs, nil
}

// Len returns the number of stored conversations.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
