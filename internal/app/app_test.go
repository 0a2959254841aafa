package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/config"
	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, key := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY", "DISPATCH_MODE", "CASE_STORE", "NATS_ENABLED"} {
		t.Setenv(key, "")
	}
	return config.Load()
}

func TestNewToolsMode(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := New(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.NATS)
	assert.Nil(t, a.Journal)
	assert.Contains(t, a.Registry.Describe(), "generate_certificate=generate_certificate")

	out := a.Dispatcher.ProcessUserInput(ctx, "emp-1", "saldo de vacaciones")
	require.Len(t, out, 1)
	assert.True(t, out[0].OK())

	reply := a.FrontDesk.Chat(ctx, "emp-1", "hola")
	assert.True(t, reply.Fallback)
}

func TestNewOfflineAgentModeWithSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.DispatchMode = config.DispatchAgent
	cfg.CaseStore = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "cases.db")

	a, err := New(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"*=agent"}, a.Registry.Describe())

	out := a.Dispatcher.ProcessUserInput(ctx, "emp-1", "certificado")
	require.Len(t, out, 1)
	require.True(t, out[0].OK(), "%v", out[0].Err)
	assert.True(t, strings.HasPrefix(out[0].Case.Response(), "[MOCK RESPONSE]"))
	assert.NotEmpty(t, out[0].Case.ThreadID)

	stored, err := a.Store.Get(ctx, out[0].Case.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusCompleted, stored.Status)
	assert.Equal(t, out[0].Case.ThreadID, stored.ThreadID)
}
