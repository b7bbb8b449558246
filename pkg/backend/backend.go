package backend

import (
	"context"

	"github.com/pseudomuto/steward/pkg/utils"
)

// Real and DryRun are the modes a handle can be opened in.
const (
	Real Mode = iota
	DryRun
)

type (
	// Mode controls whether a handle's work is ever made permanent.
	Mode int

	// Backend opens execution handles against a target database.
	Backend interface {
		Begin(ctx context.Context, mode Mode) (Handle, error)
	}

	// Handle is the unit of work a transformation runs against. A Real handle
	// is committed once its unit succeeds; a DryRun handle is only ever
	// discarded.
	Handle interface {
		Exec(ctx context.Context, query string, args ...any) error
		Commit() error
		Discard() error
		Mode() Mode
		Dialect() Dialect
	}

	// Dialect captures how statements are written for a database.
	Dialect struct {
		Name        string
		Quote       func(string) string
		Placeholder utils.Placeholder
	}
)

var (
	SQLite = Dialect{
		Name:        "sqlite",
		Quote:       utils.DoubleQuoteIdentifier,
		Placeholder: utils.QuestionPlaceholder,
	}

	Postgres = Dialect{
		Name:        "postgres",
		Quote:       utils.DoubleQuoteIdentifier,
		Placeholder: utils.DollarPlaceholder,
	}

	ClickHouse = Dialect{
		Name:        "clickhouse",
		Quote:       utils.BacktickIdentifier,
		Placeholder: utils.QuestionPlaceholder,
	}
)

func (m Mode) String() string {
	if m == DryRun {
		return "dry-run"
	}

	return "real"
}

// Insert renders a parameterized INSERT statement in the dialect.
func (d Dialect) Insert(table string, columns ...string) string {
	return utils.NewInsertBuilder(d.Quote, d.Placeholder).
		Into(table).
		Columns(columns...).
		String()
}
