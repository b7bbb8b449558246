package testutil

import (
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/stretchr/testify/require"
)

// RequireSumFileValid asserts that a sum file exists and lists every unit
// file with an h1: hash.
func RequireSumFileValid(t *testing.T, sumPath string, files ...string) {
	t.Helper()

	content, err := os.ReadFile(sumPath)
	require.NoError(t, err, "Failed to read sum file: %s", sumPath)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, len(files)+1)
	require.True(t, strings.HasPrefix(lines[0], "h1:"), "First line should be total hash")

	for i, file := range files {
		parts := strings.Fields(lines[i+1])
		require.Len(t, parts, 2, "Each line should have filename and hash")
		require.Equal(t, file, parts[0])
		require.True(t, strings.HasPrefix(parts[1], "h1:"), "Second part should be hash")
	}
}

// RequireTables asserts which of tables exist in a SQLite database.
func RequireTables(t *testing.T, db *sql.DB, present bool, tables ...string) {
	t.Helper()

	for _, table := range tables {
		var count int
		require.NoError(t, db.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count))
		require.Equal(t, present, count > 0, "table %s present", table)
	}
}

// RequireApplied asserts the names recorded in the ledger for app, in order.
func RequireApplied(t *testing.T, db *sql.DB, app string, names ...string) {
	t.Helper()

	rows, err := db.Query(
		`SELECT name FROM `+consts.DefaultLedgerTable+` WHERE app = ? ORDER BY name`, app,
	)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	got := []string{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		got = append(got, name)
	}
	require.NoError(t, rows.Err())

	if names == nil {
		names = []string{}
	}
	require.Equal(t, names, got)
}
