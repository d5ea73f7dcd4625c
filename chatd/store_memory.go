package chatd

import (
	"context"
	"sync"
)

// MemoryStore keeps conversations in a map. It is the default backend when
// no Redis URL is configured and the workhorse of the test suite.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Conversation)}
}

func (s *MemoryStore) Save(_ context.Context, conv *Conversation) error {
	if conv == nil || conv.ID == "" {
		return &ValidationError{Field: "conversation", Message: "missing id"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[conv.ID] = conv.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "conversation", Key: id}
	}
	return conv.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Conversation, error) {
	s.mu.RLock()
	convs := make([]*Conversation, 0, len(s.items))
	for _, conv := range s.items {
		convs = append(convs, conv.Clone())
	}
	s.mu.RUnlock()
	sortConversations(convs)
	return convs, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return &NotFoundError{Resource: "conversation", Key: id}
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	s.items = make(map[string]*Conversation)
	return n, nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }
