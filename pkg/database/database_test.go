package database_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pseudomuto/steward/pkg/backend"
	"github.com/pseudomuto/steward/pkg/config"
	"github.com/pseudomuto/steward/pkg/database"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfig(strings.NewReader(yaml))
	require.NoError(t, err)
	return cfg
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "steward.db")

	cfg := loadConfig(t, "databases:\n  default:\n    driver: sqlite\n    dsn: "+dsn+"\n")

	db, err := database.Open(ctx, cfg, "default")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.Equal(t, "default", db.Alias)
	require.Equal(t, config.DriverSQLite, db.Driver)

	require.NoError(t, db.Ledger.Record(ctx, "blog", "0001_initial"))
	entries, err := db.Ledger.Applied(ctx, "blog")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	h, err := db.Backend.Begin(ctx, backend.Real)
	require.NoError(t, err)
	require.Equal(t, backend.SQLite, h.Dialect())
	require.NoError(t, h.Exec(ctx, "CREATE TABLE blog_post (id INTEGER PRIMARY KEY)"))
	require.NoError(t, h.Commit())

	require.NoError(t, db.Close())

	// The ledger survives reopening.
	db, err = database.Open(ctx, cfg, "default")
	require.NoError(t, err)

	entries, err = db.Ledger.Applied(ctx, "blog")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "0001_initial", entries[0].Name)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		yaml  string
		alias string
		err   string
	}{
		{
			name:  "unknown alias",
			yaml:  "databases: {}",
			alias: "default",
			err:   "database alias 'default' is not configured",
		},
		{
			name:  "unreachable postgres",
			yaml:  "databases: {default: {driver: postgres, dsn: 'postgres://steward@127.0.0.1:1/steward?connect_timeout=1'}}",
			alias: "default",
			err:   "failed to connect to database default",
		},
		{
			name:  "clickhouse without certificates",
			yaml:  "databases: {warehouse: {driver: clickhouse, dsn: 'localhost:9000', tls: {ca_file: missing.pem}}}",
			alias: "warehouse",
			err:   "Unable to load CAfile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := database.Open(ctx, loadConfig(t, tt.yaml), tt.alias)
			require.Nil(t, db)
			require.ErrorContains(t, err, tt.err)
		})
	}
}
