package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/store/sqlite"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, sqlite.Migrate(ctx, db))
	require.NoError(t, sqlite.Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users','chats','private_chats','group_members','channel_subscribers','messages')`).Scan(&n))
	assert.Equal(t, 6, n)
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, sqlite.Migrate(ctx, db))

	_, err = db.Exec(`INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (99, 99, 'member', CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}
