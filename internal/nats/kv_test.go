package nats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/store/storetest"
)

func TestKVCaseStoreContract(t *testing.T) {
	s, err := NewKVCaseStore(context.Background(), runJetStream(t))
	require.NoError(t, err)

	storetest.RunCaseStoreContract(t, s)
}

func TestKVCaseStoreRevisions(t *testing.T) {
	ctx := context.Background()
	client := runJetStream(t)

	s, err := NewKVCaseStore(ctx, client)
	require.NoError(t, err)

	_, err = s.Create(ctx, storetest.NewCase("case-1", "alice", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, "case-1", model.InProgress()))
	require.NoError(t, s.UpdateStatus(ctx, "case-1", model.Completed("listo")))

	entry, err := s.kv.Get(ctx, "case-1")
	require.NoError(t, err)
	revision := entry.Revision()

	t.Run("repeated terminal update writes nothing", func(t *testing.T) {
		require.NoError(t, s.UpdateStatus(ctx, "case-1", model.Completed("otra")))

		entry, err := s.kv.Get(ctx, "case-1")
		require.NoError(t, err)
		assert.Equal(t, revision, entry.Revision())
	})

	t.Run("rebinding keeps existing cases", func(t *testing.T) {
		again, err := NewKVCaseStore(ctx, client)
		require.NoError(t, err)

		got, err := again.Get(ctx, "case-1")
		require.NoError(t, err)
		assert.Equal(t, model.CaseStatusCompleted, got.Status)
		assert.Equal(t, "listo", got.Response())
	})

	t.Run("unknown user lists nothing", func(t *testing.T) {
		cases, err := s.ListByUser(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, cases)
	})

	t.Run("ping fails once closed", func(t *testing.T) {
		require.NoError(t, s.Ping(ctx))
		client.Close()
		assert.Error(t, s.Ping(ctx))
	})
}
