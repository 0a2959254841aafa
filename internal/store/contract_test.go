package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/store"
	"github.com/capitalize-ai/hr-service-desk/internal/store/storetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.RunCaseStoreContract(t, store.NewMemory())
}

func TestSQLiteStoreContract(t *testing.T) {
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "cases.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	storetest.RunCaseStoreContract(t, s)
}
