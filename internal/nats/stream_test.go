package nats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

func TestCaseSubjects(t *testing.T) {
	assert.Equal(t, "cases.0190-abc.completed", CaseSubject("0190-abc", model.CaseStatusCompleted))
	assert.Equal(t, "cases.0190-abc.in_progress", CaseSubject("0190-abc", model.CaseStatusInProgress))
	assert.Equal(t, "cases.0190-abc.>", CaseFilter("0190-abc"))
}

func TestCreateTLSConfigMissingFiles(t *testing.T) {
	_, err := createTLSConfig("/nonexistent/ca.pem", "/nonexistent/cert.pem", "/nonexistent/key.pem")
	assert.Error(t, err)
}

func TestCaseJournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	journal := NewStreamManager(runJetStream(t))

	require.NoError(t, journal.EnsureStream(ctx))
	require.NoError(t, journal.EnsureStream(ctx))

	publish := func(caseID string, status model.CaseStatus) uint64 {
		t.Helper()
		event := &model.CaseEvent{
			ID:        caseID + "-" + string(status),
			CaseID:    caseID,
			UserID:    "emp-1",
			Intent:    model.IntentGenerateCertificate,
			Status:    status,
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, journal.Publish(ctx, event))
		return event.Sequence
	}

	opened := publish("case-a", model.CaseStatusOpen)
	other := publish("case-b", model.CaseStatusOpen)
	started := publish("case-a", model.CaseStatusInProgress)
	done := publish("case-a", model.CaseStatusCompleted)
	assert.Equal(t, []uint64{1, 2, 3, 4}, []uint64{opened, other, started, done})

	t.Run("full history of one case", func(t *testing.T) {
		events, last, err := journal.CaseEvents(ctx, "case-a", 0, 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, []model.CaseStatus{model.CaseStatusOpen, model.CaseStatusInProgress, model.CaseStatusCompleted},
			[]model.CaseStatus{events[0].Status, events[1].Status, events[2].Status})
		assert.Equal(t, []uint64{opened, started, done},
			[]uint64{events[0].Sequence, events[1].Sequence, events[2].Sequence})
		assert.Equal(t, done, last)
	})

	t.Run("resume after a sequence", func(t *testing.T) {
		events, last, err := journal.CaseEvents(ctx, "case-a", opened, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, started, events[0].Sequence)
		assert.Equal(t, done, last)
	})

	t.Run("limit", func(t *testing.T) {
		events, last, err := journal.CaseEvents(ctx, "case-a", 0, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, started, last)
	})

	t.Run("caught up", func(t *testing.T) {
		events, last, err := journal.CaseEvents(ctx, "case-a", done, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, done, last)
	})

	t.Run("unknown case", func(t *testing.T) {
		events, last, err := journal.CaseEvents(ctx, "case-z", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Zero(t, last)
	})
}
