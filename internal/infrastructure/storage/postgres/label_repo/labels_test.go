package label_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linksoc/internal/domain/labels"
)

func TestSelectCols(t *testing.T) {
	assert.Equal(t, []string{
		"qr_code", "id_um", "id_dois", "serie", "print_count", "last_printed_at", "created_at",
	}, selectCols)
}

func TestFirstMatch(t *testing.T) {
	sql, args, err := firstMatch("SOC-1", labels.MatchExact).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE qr_code = ? ORDER BY position LIMIT 1")
	assert.Equal(t, []any{"SOC-1"}, args)

	sql, _, err = firstMatch("soc-1", labels.MatchFold).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "upper(qr_code) = upper(?)")
}

func TestSetIDsStatement(t *testing.T) {
	idUm := "A1"
	sql, args, err := builder().
		Update(tableName).
		Set("id_um", squirrel.Expr("COALESCE(?::text, id_um)", &idUm)).
		Where(firstMatch("SOC-1", labels.MatchExact)).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE fifo_labels SET id_um = COALESCE($1::text, id_um) WHERE position = (SELECT position FROM fifo_labels WHERE qr_code = $2 ORDER BY position LIMIT 1)",
		sql)
	assert.Len(t, args, 2)
}
