package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/pseudomuto/steward/pkg/ledger"
	"github.com/pseudomuto/steward/pkg/utils"
)

const historyTable = "history"

// Ledger records applied migrations in <database>.history.
//
// ClickHouse has no cheap deletes, so every change is an insert: the table is
// a ReplacingMergeTree keyed by (app, name) with a version column, and the
// applied flag on the newest row decides whether a migration is applied.
type Ledger struct {
	conn     Conn
	database string
	cluster  string
	now      func() time.Time
}

// NewLedger creates a ledger in database (consts.DefaultClickHouseLedgerDatabase
// when empty). When cluster is set the bootstrap DDL runs ON CLUSTER.
func NewLedger(conn Conn, database, cluster string) *Ledger {
	if database == "" {
		database = consts.DefaultClickHouseLedgerDatabase
	}

	return &Ledger{
		conn:     conn,
		database: database,
		cluster:  cluster,
		now:      time.Now,
	}
}

// BootstrapStatements returns the DDL that creates the ledger database and
// table.
func (l *Ledger) BootstrapStatements() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s%s", utils.BacktickIdentifier(l.database), l.onCluster()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s%s (
    app String,
    name String,
    applied UInt8,
    applied_at DateTime64(3, 'UTC'),
    version UInt64
) ENGINE = ReplacingMergeTree(version)
ORDER BY (app, name)`, l.table(), l.onCluster()),
	}
}

// Bootstrap creates the ledger database and table if they do not exist.
func (l *Ledger) Bootstrap(ctx context.Context) error {
	for _, q := range l.BootstrapStatements() {
		if err := l.conn.Exec(ctx, q); err != nil {
			return errors.Wrapf(err, "failed to bootstrap ledger in %s", l.database)
		}
	}

	return nil
}

func (l *Ledger) Applied(ctx context.Context, app string) ([]ledger.Entry, error) {
	q := fmt.Sprintf(
		"SELECT name, applied_at FROM %s FINAL WHERE app = ? AND applied = 1 ORDER BY name",
		l.table(),
	)

	rows, err := l.conn.Query(ctx, q, app)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query ledger for %s", app)
	}
	defer func() { _ = rows.Close() }()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.Name, &e.AppliedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan ledger row")
		}

		e.App = app
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ledger rows")
	}

	return entries, nil
}

// Record marks app:name applied. Recording an applied migration again only
// refreshes its timestamp.
func (l *Ledger) Record(ctx context.Context, app, name string) error {
	return errors.Wrapf(l.put(ctx, app, name, true), "failed to record %s:%s", app, name)
}

func (l *Ledger) Unrecord(ctx context.Context, app, name string) error {
	return errors.Wrapf(l.put(ctx, app, name, false), "failed to unrecord %s:%s", app, name)
}

func (l *Ledger) DeleteGhost(ctx context.Context, app, name string) error {
	return errors.Wrapf(l.put(ctx, app, name, false), "failed to delete ghost %s:%s", app, name)
}

func (l *Ledger) put(ctx context.Context, app, name string, applied bool) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (app, name, applied, applied_at, version) VALUES (?, ?, ?, ?, ?)",
		l.table(),
	)

	var flag uint8
	if applied {
		flag = 1
	}

	now := l.now().UTC()
	return l.conn.Exec(ctx, q, app, name, flag, now, uint64(now.UnixNano()))
}

func (l *Ledger) table() string {
	return utils.BacktickIdentifier(l.database) + "." + utils.BacktickIdentifier(historyTable)
}

func (l *Ledger) onCluster() string {
	if l.cluster == "" {
		return ""
	}

	return " ON CLUSTER " + utils.BacktickIdentifier(l.cluster)
}
