package sqlrepo

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockQueryFollowsDialect(t *testing.T) {
	pg := New(nil, Dialect{Name: "postgres", Placeholder: sq.Dollar, RowLock: "FOR UPDATE"})
	query, args, err := (&ChatRepo{s: pg}).lockQuery(7).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE id = $1 FOR UPDATE")
	assert.Equal(t, []any{int64(7)}, args)

	lite := New(nil, Dialect{Name: "sqlite", Placeholder: sq.Question})
	query, _, err = (&ChatRepo{s: lite}).lockQuery(7).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, query, "FOR UPDATE")
}

func TestLowerFollowsDialect(t *testing.T) {
	assert.Equal(t, "LOWER(username)", New(nil, Dialect{Placeholder: sq.Dollar}).lower("username"))
	assert.Equal(t, "unicode_lower(username)", New(nil, Dialect{Placeholder: sq.Question, Lower: "unicode_lower"}).lower("username"))
}
