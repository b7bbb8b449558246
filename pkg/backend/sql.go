package backend

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// ErrDryRunCommit is returned when committing a handle opened in DryRun mode.
var ErrDryRunCommit = errors.New("cannot commit a dry-run handle")

type (
	// SQL is a Backend over database/sql. Every handle is a transaction.
	SQL struct {
		db      *sql.DB
		dialect Dialect
	}

	sqlHandle struct {
		tx      *sql.Tx
		mode    Mode
		dialect Dialect
	}
)

// NewSQL creates a backend that opens transactions on db.
func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect}
}

func (b *SQL) Begin(ctx context.Context, mode Mode) (Handle, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to begin %s transaction", mode)
	}

	return &sqlHandle{tx: tx, mode: mode, dialect: b.dialect}, nil
}

func (h *sqlHandle) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := h.tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "failed to execute: %s", query)
	}

	return nil
}

func (h *sqlHandle) Commit() error {
	if h.mode == DryRun {
		return ErrDryRunCommit
	}

	return errors.Wrap(h.tx.Commit(), "failed to commit transaction")
}

func (h *sqlHandle) Discard() error {
	if err := h.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.Wrap(err, "failed to roll back transaction")
	}

	return nil
}

func (h *sqlHandle) Mode() Mode       { return h.mode }
func (h *sqlHandle) Dialect() Dialect { return h.dialect }
