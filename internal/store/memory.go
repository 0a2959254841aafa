package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

// MemoryStore keeps cases in process memory.
type MemoryStore struct {
	cases map[string]*model.Case
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemory creates an empty in-memory case store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		cases: make(map[string]*model.Case),
		now:   time.Now,
	}
}

// Create persists a new case.
func (s *MemoryStore) Create(ctx context.Context, c *model.Case) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cases[c.ID]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateCase, c.ID)
	}
	s.cases[c.ID] = c.Clone()

	return c.ID, nil
}

// UpdateStatus applies a lifecycle transition.
func (s *MemoryStore) UpdateStatus(ctx context.Context, caseID string, update model.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.cases[caseID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	next := c.Clone()
	if err := next.Apply(update, s.now()); err != nil {
		return err
	}
	s.cases[caseID] = next

	return nil
}

// Get retrieves a case by ID.
func (s *MemoryStore) Get(ctx context.Context, caseID string) (*model.Case, error) {
	s.mu.RLock()
	c, exists := s.cases[caseID]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	return c.Clone(), nil
}

// ListByUser returns a user's cases, newest first.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]model.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cases []model.Case
	for _, c := range s.cases {
		if c.UserID == userID {
			cases = append(cases, *c.Clone())
		}
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})

	if limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}

	return cases, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
