package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the project configuration file looked up in the project directory
	ConfigFile = "steward.yaml"

	// SumFile is the integrity file kept alongside each app's migration units
	SumFile = "steward.sum"

	// DefaultDatabase is the database alias used when --database is not given
	DefaultDatabase = "default"

	// DefaultLedgerTable is the SQL table holding applied migration records
	DefaultLedgerTable = "steward_migrations"

	// DefaultClickHouseLedgerDatabase is the ClickHouse database holding the history table
	DefaultClickHouseLedgerDatabase = "steward"

	// DefaultFixturesDir is where initial data fixtures are looked up, per app
	DefaultFixturesDir = "fixtures"

	// InitialDataFile is the fixture file loaded after create-type migrations
	InitialDataFile = "initial_data.yaml"

	// TargetZero is the migration target that reverts every unit of an app
	TargetZero = "zero"
)
