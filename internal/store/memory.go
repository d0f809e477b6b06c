package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/soc-intake/internal/domain"
)

// MemoryStore keeps tickets in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets: make(map[string]*domain.Ticket),
	}
}

// Create implements TicketStore.
func (s *MemoryStore) Create(_ context.Context, t *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tickets[t.ID]; exists {
		return fmt.Errorf("ticket %s already exists", t.ID)
	}
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

// Get implements TicketStore.
func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	// Return a copy so callers cannot mutate stored state
	cp := *t
	return &cp, nil
}

// List implements TicketStore.
func (s *MemoryStore) List(_ context.Context) ([]*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		cp := *t
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateSummary implements TicketStore.
func (s *MemoryStore) UpdateSummary(_ context.Context, id string, update SummaryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.Summary = update.Summary
	t.Description = update.Description
	t.Severity = update.Severity
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Ping implements TicketStore.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close implements TicketStore.
func (s *MemoryStore) Close() error {
	return nil
}
