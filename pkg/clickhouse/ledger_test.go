package clickhouse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pseudomuto/steward/pkg/clickhouse"
	"github.com/stretchr/testify/require"
)

type call struct {
	query string
	args  []any
}

type fakeConn struct {
	calls []call
	err   error
}

func (c *fakeConn) Exec(_ context.Context, query string, args ...any) error {
	c.calls = append(c.calls, call{query: query, args: args})
	return c.err
}

func (c *fakeConn) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, errors.New("query not supported")
}

func TestLedgerBootstrapStatements(t *testing.T) {
	tests := []struct {
		name     string
		database string
		cluster  string
		expected []string
	}{
		{
			name: "defaults",
			expected: []string{
				"CREATE DATABASE IF NOT EXISTS `steward`",
				"CREATE TABLE IF NOT EXISTS `steward`.`history` (",
			},
		},
		{
			name:     "custom database on cluster",
			database: "ops",
			cluster:  "production",
			expected: []string{
				"CREATE DATABASE IF NOT EXISTS `ops` ON CLUSTER `production`",
				"CREATE TABLE IF NOT EXISTS `ops`.`history` ON CLUSTER `production` (",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := clickhouse.NewLedger(&fakeConn{}, tt.database, tt.cluster).BootstrapStatements()
			require.Len(t, stmts, 2)
			require.Equal(t, tt.expected[0], stmts[0])
			require.Contains(t, stmts[1], tt.expected[1])
			require.Contains(t, stmts[1], "ENGINE = ReplacingMergeTree(version)")
		})
	}
}

func TestLedgerWrites(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	led := clickhouse.NewLedger(conn, "", "")

	require.NoError(t, led.Bootstrap(ctx))
	require.Len(t, conn.calls, 2)

	require.NoError(t, led.Record(ctx, "blog", "0001_initial"))
	require.NoError(t, led.Unrecord(ctx, "blog", "0001_initial"))
	require.NoError(t, led.DeleteGhost(ctx, "blog", "0009_gone"))
	require.Len(t, conn.calls, 5)

	for _, c := range conn.calls[2:] {
		require.Contains(t, c.query, "INSERT INTO `steward`.`history`")
		require.Len(t, c.args, 5)
	}

	require.Equal(t, []any{"blog", "0001_initial", uint8(1)}, conn.calls[2].args[:3])
	require.Equal(t, []any{"blog", "0001_initial", uint8(0)}, conn.calls[3].args[:3])
	require.Equal(t, []any{"blog", "0009_gone", uint8(0)}, conn.calls[4].args[:3])
}

func TestLedgerErrors(t *testing.T) {
	ctx := context.Background()
	led := clickhouse.NewLedger(&fakeConn{err: errors.New("boom")}, "", "")

	require.ErrorContains(t, led.Bootstrap(ctx), "failed to bootstrap ledger in steward: boom")
	require.ErrorContains(t, led.Record(ctx, "blog", "0001"), "failed to record blog:0001: boom")
	require.ErrorContains(t, led.Unrecord(ctx, "blog", "0001"), "failed to unrecord blog:0001: boom")
	require.ErrorContains(t, led.DeleteGhost(ctx, "blog", "0001"), "failed to delete ghost blog:0001: boom")

	_, err := led.Applied(ctx, "blog")
	require.ErrorContains(t, err, "failed to query ledger for blog")
}
