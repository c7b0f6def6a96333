package queue_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReprintDeleteStatement(t *testing.T) {
	sql, args, err := builder().Delete(reprintTable).
		Where(squirrel.Eq{"scan_id": []string{"A", "B"}}).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM fifo_reprint WHERE scan_id IN ($1,$2)", sql)
	assert.Equal(t, []any{"A", "B"}, args)

	sql, args, err = builder().Delete(reprintTable).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM fifo_reprint", sql)
	assert.Empty(t, args)
}
