package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/backend"
	"github.com/pseudomuto/steward/pkg/consts"
)

// SQL is a Ledger stored in a database/sql table.
type SQL struct {
	db      *sql.DB
	dialect backend.Dialect
	table   string
	now     func() time.Time
}

// NewSQL creates a ledger in table (consts.DefaultLedgerTable when empty).
// Call Bootstrap before first use.
func NewSQL(db *sql.DB, dialect backend.Dialect, table string) *SQL {
	if table == "" {
		table = consts.DefaultLedgerTable
	}

	return &SQL{
		db:      db,
		dialect: dialect,
		table:   table,
		now:     time.Now,
	}
}

// Bootstrap creates the ledger table if it does not exist.
func (l *SQL) Bootstrap(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    app VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL,
    applied_at VARCHAR(64) NOT NULL,
    PRIMARY KEY (app, name)
)`, l.dialect.Quote(l.table))

	if _, err := l.db.ExecContext(ctx, q); err != nil {
		return errors.Wrapf(err, "failed to create ledger table %s", l.table)
	}

	return nil
}

func (l *SQL) Applied(ctx context.Context, app string) ([]Entry, error) {
	q := fmt.Sprintf(
		"SELECT name, applied_at FROM %s WHERE app = %s ORDER BY name",
		l.dialect.Quote(l.table),
		l.dialect.Placeholder(1),
	)

	rows, err := l.db.QueryContext(ctx, q, app)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query ledger for %s", app)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var name, stamp string
		if err := rows.Scan(&name, &stamp); err != nil {
			return nil, errors.Wrap(err, "failed to scan ledger row")
		}

		at, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid applied_at for %s:%s", app, name)
		}

		entries = append(entries, Entry{App: app, Name: name, AppliedAt: at})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ledger rows")
	}

	return entries, nil
}

func (l *SQL) Record(ctx context.Context, app, name string) error {
	q := l.dialect.Insert(l.table, "app", "name", "applied_at")
	stamp := l.now().UTC().Format(time.RFC3339Nano)

	if _, err := l.db.ExecContext(ctx, q, app, name, stamp); err != nil {
		return errors.Wrapf(err, "failed to record %s:%s", app, name)
	}

	return nil
}

func (l *SQL) Unrecord(ctx context.Context, app, name string) error {
	return errors.Wrapf(l.delete(ctx, app, name), "failed to unrecord %s:%s", app, name)
}

func (l *SQL) DeleteGhost(ctx context.Context, app, name string) error {
	return errors.Wrapf(l.delete(ctx, app, name), "failed to delete ghost %s:%s", app, name)
}

func (l *SQL) delete(ctx context.Context, app, name string) error {
	q := fmt.Sprintf(
		"DELETE FROM %s WHERE app = %s AND name = %s",
		l.dialect.Quote(l.table),
		l.dialect.Placeholder(1),
		l.dialect.Placeholder(2),
	)

	_, err := l.db.ExecContext(ctx, q, app, name)
	return err
}
