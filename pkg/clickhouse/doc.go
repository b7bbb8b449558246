// Package clickhouse runs migrations against ClickHouse with
// github.com/ClickHouse/clickhouse-go/v2.
//
// It provides three pieces:
//
//   - Client: a native-protocol connection configured from a DSN, an optional
//     cluster name and optional mTLS files.
//   - Ledger: the applied-state ledger, stored in steward.history.
//   - Backend: a migration backend. ClickHouse DDL cannot be rolled back, so
//     dry runs capture statements instead of executing them.
//
// Example usage:
//
//	client, err := clickhouse.NewClient(ctx, clickhouse.ClientOptions{DSN: "localhost:9000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	led := clickhouse.NewLedger(client, "steward", client.Cluster())
//	if err := led.Bootstrap(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	engine := executor.New(executor.Config{
//		Backend: clickhouse.NewBackend(client),
//		Ledger:  led,
//	})
package clickhouse
