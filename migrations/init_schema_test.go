package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitSchemaSQLite(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.NoError(t, InitSchema(ctx, db, SQLite))
	require.NoError(t, InitSchema(ctx, db, SQLite), "schema creation is repeatable")

	for _, table := range Tables {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n), table)
		assert.Zero(t, n, table)
	}
}

func TestVerifySchemaReportsMissingTable(t *testing.T) {
	db := openMemory(t)

	err := VerifySchema(context.Background(), db, SQLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runs")
}

func TestInitSchemaUnknownDialect(t *testing.T) {
	db := openMemory(t)

	err := InitSchema(context.Background(), db, Dialect("oracle"))
	assert.EqualError(t, err, "unsupported dialect: oracle")
}
