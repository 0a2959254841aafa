// Package store provides case persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

var (
	// ErrCaseNotFound is returned when no case exists for an ID.
	ErrCaseNotFound = errors.New("case not found")
	// ErrDuplicateCase is returned when creating a case whose ID already exists.
	ErrDuplicateCase = errors.New("case already exists")
)

// CaseStore defines the interface for persisting cases.
type CaseStore interface {
	// Create persists a new case and returns its ID.
	Create(ctx context.Context, c *model.Case) (string, error)

	// UpdateStatus applies a lifecycle transition to a stored case.
	// Repeating the current terminal status succeeds without changes.
	UpdateStatus(ctx context.Context, caseID string, update model.StatusUpdate) error

	// Get retrieves a case by ID, or ErrCaseNotFound.
	Get(ctx context.Context, caseID string) (*model.Case, error)

	// ListByUser returns a user's cases, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Case, error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing storage.
	Close() error
}
