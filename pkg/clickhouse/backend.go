package clickhouse

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/backend"
)

type (
	// Execer runs a single statement.
	Execer interface {
		Exec(ctx context.Context, query string, args ...any) error
	}

	// Backend runs migrations against ClickHouse.
	//
	// ClickHouse DDL is not transactional: a Real handle executes each
	// statement immediately and Commit and Discard have nothing to do. A DryRun
	// handle never touches the server; it records its statements instead so
	// they can be shown to the user (see Statements).
	Backend struct {
		conn Execer

		mu         sync.Mutex
		statements []string
	}

	handle struct {
		b      *Backend
		mode   backend.Mode
		closed bool
	}
)

var _ backend.Backend = (*Backend)(nil)

func NewBackend(conn Execer) *Backend {
	return &Backend{conn: conn}
}

func (b *Backend) Begin(_ context.Context, mode backend.Mode) (backend.Handle, error) {
	return &handle{b: b, mode: mode}, nil
}

// Statements returns every statement captured by dry-run handles, in order.
func (b *Backend) Statements() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.statements...)
}

func (h *handle) Exec(ctx context.Context, query string, args ...any) error {
	if h.closed {
		return errors.New("handle is closed")
	}

	if h.mode == backend.DryRun {
		h.b.mu.Lock()
		h.b.statements = append(h.b.statements, query)
		h.b.mu.Unlock()
		return nil
	}

	return errors.Wrapf(h.b.conn.Exec(ctx, query, args...), "failed to execute: %s", query)
}

func (h *handle) Commit() error {
	if h.mode == backend.DryRun {
		return backend.ErrDryRunCommit
	}

	h.closed = true
	return nil
}

func (h *handle) Discard() error {
	h.closed = true
	return nil
}

func (h *handle) Mode() backend.Mode       { return h.mode }
func (h *handle) Dialect() backend.Dialect { return backend.ClickHouse }
