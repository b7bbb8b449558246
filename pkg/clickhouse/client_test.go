package clickhouse_test

import (
	"context"
	"testing"

	"github.com/pseudomuto/steward/pkg/clickhouse"
	"github.com/stretchr/testify/require"
)

func TestNewClientErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opts clickhouse.ClientOptions
		err  string
	}{
		{
			name: "missing DSN",
			err:  "ClickHouse DSN is required",
		},
		{
			name: "invalid URL",
			opts: clickhouse.ClientOptions{DSN: "clickhouse://localhost:9000?dial_timeout=soon"},
			err:  "invalid ClickHouse DSN",
		},
		{
			name: "missing TLS files",
			opts: clickhouse.ClientOptions{
				DSN:         "localhost:9000",
				TLSSettings: clickhouse.TLSSettings{CAFile: "missing-ca.pem"},
			},
			err: "Unable to load CAfile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := clickhouse.NewClient(ctx, tt.opts)
			require.Nil(t, client)
			require.ErrorContains(t, err, tt.err)
		})
	}
}
