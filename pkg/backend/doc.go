// Package backend defines the execution handles migration units run against.
//
// A Backend hands out one Handle per unit of work. Handles opened in Real mode
// are committed after the unit succeeds and discarded when it fails. Handles
// opened in DryRun mode run the same statements but are never committed, so
// a whole plan can be rehearsed without touching the schema.
//
// Implementations:
//   - SQL wraps a database/sql connection pool and maps each handle onto a
//     transaction (SQLite and PostgreSQL both support transactional DDL).
//   - Recorder keeps statements in memory and is used in tests.
//
// ClickHouse has no DDL transactions; its backend lives in pkg/clickhouse.
package backend
