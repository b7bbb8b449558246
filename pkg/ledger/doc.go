// Package ledger records which migration units are applied.
//
// Memory keeps entries in process and backs tests and rehearsals. SQL keeps
// them in a table (steward_migrations by default) through database/sql and
// works with the sqlite and postgres drivers opened by pkg/database. The
// ClickHouse ledger lives in pkg/clickhouse.
package ledger
