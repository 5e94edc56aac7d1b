package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"message-store/internal/domain"
)

// MemoryStore keeps messages in process memory, listed in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	items map[string]domain.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]domain.Message)}
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.order, func(id string, _ int) domain.Message {
		return s.items[id]
	}), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.items[id]
	return msg, ok, nil
}

func (s *MemoryStore) Insert(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[msg.ID]; ok {
		return fmt.Errorf("repository: Insert %q: %w", msg.ID, domain.ErrMessageExists)
	}
	s.items[msg.ID] = msg
	s.order = append(s.order, msg.ID)
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[msg.ID]; !ok {
		return fmt.Errorf("repository: Replace %q: %w", msg.ID, domain.ErrMessageNotFound)
	}
	s.items[msg.ID] = msg
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (domain.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.items[id]
	if !ok {
		return domain.Message{}, false, nil
	}
	delete(s.items, id)
	s.order = lo.Without(s.order, id)
	return msg, true, nil
}

func (s *MemoryStore) Close() error { return nil }
