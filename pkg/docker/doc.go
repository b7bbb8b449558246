// Package docker runs disposable ClickHouse servers through testcontainers-go.
//
// The servers back the ClickHouse ledger and backend integration tests. A
// project's config.d directory can be mounted so cluster and macro settings
// match production:
//
//	srv := docker.NewServer(docker.Options{
//		Version:   "25.7",
//		ConfigDir: "db/config.d",
//	})
//	if err := srv.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer func() { _ = srv.Stop(ctx) }()
//
//	dsn, _ := srv.DSN(ctx)
//	client, _ := clickhouse.NewClient(ctx, clickhouse.ClientOptions{DSN: dsn})
package docker
