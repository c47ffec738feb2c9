package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestInitSchemaIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, db))
	require.NoError(t, InitSchema(ctx, db))

	for _, table := range []string{"geocode_cache", "route_cache"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestInitSchemaRejectsNilDB(t *testing.T) {
	assert.Error(t, InitSchema(context.Background(), nil))
	assert.Error(t, InitPostgresSchema(context.Background(), nil))
}
