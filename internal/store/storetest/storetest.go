// Package storetest holds the behaviour every store.CaseStore must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
)

// NewCase builds an open vacation case for user created at created.
func NewCase(id, userID string, created time.Time) *model.Case {
	return model.NewCase(id, userID, model.Intent{
		Type:        model.IntentCheckVacationBalance,
		Description: "Consulta de saldo o solicitud de vacaciones",
	}, created)
}

// RunCaseStoreContract exercises s from empty: create, duplicate detection,
// the status lifecycle, terminal idempotency and per-user listing.
func RunCaseStoreContract(t *testing.T, s store.CaseStore) {
	t.Helper()

	ctx := context.Background()
	created := time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.Ping(ctx))

	id, err := s.Create(ctx, NewCase("case-1", "alice", created))
	require.NoError(t, err)
	assert.Equal(t, "case-1", id)

	t.Run("duplicate create fails", func(t *testing.T) {
		_, err := s.Create(ctx, NewCase("case-1", "bob", created))
		assert.ErrorIs(t, err, store.ErrDuplicateCase)
	})

	t.Run("get returns open case", func(t *testing.T) {
		got, err := s.Get(ctx, "case-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.UserID)
		assert.Equal(t, model.IntentCheckVacationBalance, got.Intent)
		assert.Equal(t, model.CaseStatusOpen, got.Status)
		assert.Nil(t, got.AgentResponse)
		assert.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("missing case", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrCaseNotFound)
		assert.ErrorIs(t, s.UpdateStatus(ctx, "nope", model.InProgress()), store.ErrCaseNotFound)
	})

	t.Run("lifecycle", func(t *testing.T) {
		require.NoError(t, s.UpdateStatus(ctx, "case-1", model.InProgress()))
		require.NoError(t, s.UpdateStatus(ctx, "case-1", model.Completed("10 días disponibles").WithThread("th-9")))

		got, err := s.Get(ctx, "case-1")
		require.NoError(t, err)
		assert.Equal(t, model.CaseStatusCompleted, got.Status)
		assert.Equal(t, "10 días disponibles", got.Response())
		assert.Equal(t, "th-9", got.ThreadID)
		assert.NotNil(t, got.ClosedAt)
		assert.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("terminal update is idempotent", func(t *testing.T) {
		require.NoError(t, s.UpdateStatus(ctx, "case-1", model.Completed("otra respuesta")))
		got, err := s.Get(ctx, "case-1")
		require.NoError(t, err)
		assert.Equal(t, "10 días disponibles", got.Response())
	})

	t.Run("terminal cannot regress", func(t *testing.T) {
		err := s.UpdateStatus(ctx, "case-1", model.Failed("late failure"))
		assert.ErrorIs(t, err, model.ErrInvalidTransition)
	})

	t.Run("list by user newest first", func(t *testing.T) {
		_, err := s.Create(ctx, NewCase("case-2", "alice", created.Add(time.Hour)))
		require.NoError(t, err)
		_, err = s.Create(ctx, NewCase("case-3", "carol", created))
		require.NoError(t, err)

		cases, err := s.ListByUser(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, cases, 2)
		assert.Equal(t, "case-2", cases[0].ID)
		assert.Equal(t, "case-1", cases[1].ID)

		limited, err := s.ListByUser(ctx, "alice", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		none, err := s.ListByUser(ctx, "dave", 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
