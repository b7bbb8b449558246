package clickhouse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pseudomuto/steward/pkg/backend"
	"github.com/pseudomuto/steward/pkg/clickhouse"
	"github.com/stretchr/testify/require"
)

type execFunc func(ctx context.Context, query string, args ...any) error

func (f execFunc) Exec(ctx context.Context, query string, args ...any) error {
	return f(ctx, query, args...)
}

func TestBackendReal(t *testing.T) {
	ctx := context.Background()

	var executed []string
	b := clickhouse.NewBackend(execFunc(func(_ context.Context, q string, _ ...any) error {
		if q == "BAD" {
			return errors.New("syntax error")
		}

		executed = append(executed, q)
		return nil
	}))

	h, err := b.Begin(ctx, backend.Real)
	require.NoError(t, err)
	require.Equal(t, backend.Real, h.Mode())
	require.Equal(t, backend.ClickHouse, h.Dialect())

	require.NoError(t, h.Exec(ctx, "CREATE TABLE a (id UInt64) ENGINE = Memory"))
	require.Equal(t, []string{"CREATE TABLE a (id UInt64) ENGINE = Memory"}, executed)

	err = h.Exec(ctx, "BAD")
	require.ErrorContains(t, err, "failed to execute: BAD: syntax error")

	require.NoError(t, h.Commit())
	require.Error(t, h.Exec(ctx, "SELECT 1"))
	require.Empty(t, b.Statements())
}

func TestBackendDryRun(t *testing.T) {
	ctx := context.Background()

	b := clickhouse.NewBackend(execFunc(func(context.Context, string, ...any) error {
		t.Fatal("dry run must not reach the server")
		return nil
	}))

	h, err := b.Begin(ctx, backend.DryRun)
	require.NoError(t, err)
	require.Equal(t, backend.DryRun, h.Mode())

	require.NoError(t, h.Exec(ctx, "CREATE TABLE a (id UInt64) ENGINE = Memory"))
	require.NoError(t, h.Exec(ctx, "DROP TABLE a"))
	require.ErrorIs(t, h.Commit(), backend.ErrDryRunCommit)
	require.NoError(t, h.Discard())

	require.Equal(t, []string{
		"CREATE TABLE a (id UInt64) ENGINE = Memory",
		"DROP TABLE a",
	}, b.Statements())
}
