// Package database opens the database behind a steward.yaml alias.
//
// SQLite (modernc.org/sqlite) and PostgreSQL (pgx) aliases get a
// transactional backend and a SQL ledger table; ClickHouse aliases get the
// backend and ledger from package clickhouse.
package database
