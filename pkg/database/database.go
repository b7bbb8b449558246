package database

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/backend"
	"github.com/pseudomuto/steward/pkg/clickhouse"
	"github.com/pseudomuto/steward/pkg/config"
	"github.com/pseudomuto/steward/pkg/ledger"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// database/sql driver names registered by the blank imports above.
const (
	sqliteDriver   = "sqlite"
	postgresDriver = "pgx"
)

// Database is an open connection to a configured alias: the backend that runs
// migrations and the ledger that records them.
type Database struct {
	Alias   string
	Driver  string
	Backend backend.Backend
	Ledger  ledger.Ledger

	closer io.Closer
}

// Open connects to the database configured under alias and bootstraps its
// ledger.
//
//	db, err := database.Open(ctx, cfg, "default")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
func Open(ctx context.Context, cfg *config.Config, alias string) (*Database, error) {
	dbCfg, err := cfg.Database(alias)
	if err != nil {
		return nil, err
	}

	slog.Debug("Opening database", "alias", alias, "driver", dbCfg.Driver)

	switch dbCfg.Driver {
	case config.DriverSQLite:
		return openSQL(ctx, alias, dbCfg, sqliteDriver, backend.SQLite, cfg.LedgerTable)
	case config.DriverPostgres:
		return openSQL(ctx, alias, dbCfg, postgresDriver, backend.Postgres, cfg.LedgerTable)
	case config.DriverClickHouse:
		return openClickHouse(ctx, alias, dbCfg)
	}

	return nil, errors.Errorf("unsupported driver '%s' for database %s", dbCfg.Driver, alias)
}

// Close releases the underlying connection.
func (d *Database) Close() error {
	if d.closer == nil {
		return nil
	}

	return d.closer.Close()
}

func openSQL(
	ctx context.Context,
	alias string,
	dbCfg config.Database,
	driver string,
	dialect backend.Dialect,
	table string,
) (*Database, error) {
	db, err := sql.Open(driver, dbCfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", alias)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to database %s", alias)
	}

	led := ledger.NewSQL(db, dialect, table)
	if err := led.Bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Database{
		Alias:   alias,
		Driver:  dbCfg.Driver,
		Backend: backend.NewSQL(db, dialect),
		Ledger:  led,
		closer:  db,
	}, nil
}

func openClickHouse(ctx context.Context, alias string, dbCfg config.Database) (*Database, error) {
	opts := clickhouse.ClientOptions{DSN: dbCfg.DSN, Cluster: dbCfg.Cluster}
	if dbCfg.TLS != nil {
		opts.TLSSettings = clickhouse.TLSSettings{
			CAFile:             dbCfg.TLS.CAFile,
			CertFile:           dbCfg.TLS.CertFile,
			KeyFile:            dbCfg.TLS.KeyFile,
			InsecureSkipVerify: dbCfg.TLS.InsecureSkipVerify,
		}
	}

	client, err := clickhouse.NewClient(ctx, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to database %s", alias)
	}

	led := clickhouse.NewLedger(client, dbCfg.LedgerDatabase, client.Cluster())
	if err := led.Bootstrap(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Database{
		Alias:   alias,
		Driver:  dbCfg.Driver,
		Backend: clickhouse.NewBackend(client),
		Ledger:  led,
		closer:  client,
	}, nil
}
