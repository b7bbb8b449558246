package config

import (
	"io"
	"os"
	"slices"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/consts"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverSQLite     = "sqlite"
	DriverPostgres   = "postgres"
	DriverClickHouse = "clickhouse"
)

type (
	// TLS holds client certificate settings for ClickHouse connections.
	TLS struct {
		CAFile             string `yaml:"ca_file,omitempty"`
		CertFile           string `yaml:"cert_file,omitempty"`
		KeyFile            string `yaml:"key_file,omitempty"`
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty"`
	}

	// Database describes one database alias selectable with --database.
	Database struct {
		// Driver is one of sqlite, postgres or clickhouse.
		Driver string `yaml:"driver"`

		// DSN is passed to the driver as is.
		DSN string `yaml:"dsn"`

		// Cluster adds ON CLUSTER to the ClickHouse ledger DDL.
		Cluster string `yaml:"cluster,omitempty"`

		// LedgerDatabase is the ClickHouse database holding the history table.
		LedgerDatabase string `yaml:"ledger_database,omitempty"`

		TLS *TLS `yaml:"tls,omitempty"`
	}

	// App names an application module and where its migrations live.
	App struct {
		Label string `yaml:"label"`
		Dir   string `yaml:"dir"`
	}

	// Config represents the project configuration (steward.yaml).
	Config struct {
		// Databases maps aliases to connection settings.
		Databases map[string]Database `yaml:"databases"`

		// Apps lists the application modules with migrations, in the order
		// they are migrated.
		Apps []App `yaml:"apps"`

		// Fixtures is the directory holding <app>/initial_data.yaml files.
		Fixtures string `yaml:"fixtures,omitempty"`

		// LedgerTable is the SQL table recording applied migrations.
		LedgerTable string `yaml:"ledger_table,omitempty"`
	}
)

// LoadConfig parses a project configuration from the provided io.Reader and
// applies defaults.
//
// Example:
//
//	yamlData := `
//	databases:
//	  default:
//	    driver: sqlite
//	    dsn: steward.db
//	apps:
//	  - label: blog
//	    dir: blog/migrations
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal project config")
	}

	if cfg.Fixtures == "" {
		cfg.Fixtures = consts.DefaultFixturesDir
	}
	if cfg.LedgerTable == "" {
		cfg.LedgerTable = consts.DefaultLedgerTable
	}

	for alias, db := range cfg.Databases {
		if db.Driver == DriverClickHouse && db.LedgerDatabase == "" {
			db.LedgerDatabase = consts.DefaultClickHouseLedgerDatabase
			cfg.Databases[alias] = db
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Database returns the settings for alias.
func (c *Config) Database(alias string) (Database, error) {
	db, ok := c.Databases[alias]
	if !ok {
		return Database{}, errors.Errorf("database alias '%s' is not configured", alias)
	}

	return db, nil
}

// App returns the app with label, if configured.
func (c *Config) App(label string) (App, bool) {
	i := slices.IndexFunc(c.Apps, func(a App) bool { return a.Label == label })
	if i < 0 {
		return App{}, false
	}

	return c.Apps[i], true
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Apps))
	for i, app := range c.Apps {
		if app.Label == "" {
			return errors.Errorf("apps[%d]: label is required", i)
		}
		if app.Dir == "" {
			return errors.Errorf("apps[%d] (%s): dir is required", i, app.Label)
		}
		if seen[app.Label] {
			return errors.Errorf("apps[%d]: duplicate label %s", i, app.Label)
		}
		seen[app.Label] = true
	}

	for alias, db := range c.Databases {
		switch db.Driver {
		case DriverSQLite, DriverPostgres, DriverClickHouse:
		default:
			return errors.Errorf("databases.%s: unsupported driver '%s'", alias, db.Driver)
		}

		if db.DSN == "" {
			return errors.Errorf("databases.%s: dsn is required", alias)
		}
	}

	return nil
}
