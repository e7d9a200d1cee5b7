// Package sqlitetest provides a migrated throwaway SQLite store for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"messenger/internal/store/sqlite"
	"messenger/internal/store/sqlrepo"
)

// New returns a fresh store backed by a file in t.TempDir.
func New(t testing.TB) *sqlrepo.Store {
	t.Helper()
	store, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
