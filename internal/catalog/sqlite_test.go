package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/ir"
)

func createDatabase(t *testing.T, ddl ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := createDatabase(t,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, status VARCHAR(20) NOT NULL, placed_at DATETIME)`,
		`CREATE TABLE customers (id BIGINT, vip BOOLEAN)`,
	)

	cat, err := LoadSQLite(context.Background(), path)
	require.NoError(t, err)

	tables := cat.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "customers", tables[0].Name, "tables are loaded in name order")
	assert.Equal(t, "orders", tables[1].Name)
	assert.Equal(t, []Column{
		{Name: "id", Type: ir.RawType("INTEGER")},
		{Name: "status", Type: ir.RawType("VARCHAR(20)")},
		{Name: "placed_at", Type: ir.RawType("DATETIME")},
	}, tables[1].Columns)
}

func TestLoadSQLiteIncludesViews(t *testing.T) {
	path := createDatabase(t,
		`CREATE TABLE orders (id INTEGER, total NUMERIC(10,2))`,
		`CREATE VIEW big_orders AS SELECT id, total FROM orders WHERE total > 100`,
	)

	cat, err := LoadSQLite(context.Background(), path)
	require.NoError(t, err)

	_, err = cat.Resolve("big_orders", "total")
	assert.NoError(t, err)
}

func TestLoadSQLiteMissingFile(t *testing.T) {
	_, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err, "read-only open does not create the file")
}

func TestSQLiteURI(t *testing.T) {
	uri, err := sqliteURI("/data/we?ird#name.db", "ro")
	require.NoError(t, err)
	assert.Equal(t, "file:///data/we%3Fird%23name.db?mode=ro", uri)
}

func TestLoadSQLiteEscapesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "we?ird#dir", "schema.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	uri, err := sqliteURI(path, "rwc")
	require.NoError(t, err)
	db, err := sql.Open("sqlite3", uri)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cat, err := LoadSQLite(context.Background(), path)
	require.NoError(t, err)
	_, err = cat.Resolve("orders", "id")
	assert.NoError(t, err)
}
