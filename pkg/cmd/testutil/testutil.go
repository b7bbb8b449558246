package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/steward/pkg/config"
	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite"
)

// ProjectFixture is a steward project in a temporary directory backed by a
// SQLite database. Creating one changes the working directory to the project.
type ProjectFixture struct {
	Dir    string
	Config *config.Config
	t      *testing.T
}

// UnitFile is a migration unit written to an app's migrations directory.
type UnitFile struct {
	Name    string
	Content string
}

// TestProject creates an isolated project with a default SQLite database and
// no apps.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)

	p := &ProjectFixture{
		Dir: dir,
		Config: &config.Config{
			Databases: map[string]config.Database{
				consts.DefaultDatabase: {Driver: config.DriverSQLite, DSN: filepath.Join(dir, "steward.db")},
			},
			Fixtures:    consts.DefaultFixturesDir,
			LedgerTable: consts.DefaultLedgerTable,
		},
		t: t,
	}

	p.writeConfig()
	return p
}

// WithApp adds an app whose migrations live in <label>/migrations.
func (p *ProjectFixture) WithApp(label string, units ...UnitFile) *ProjectFixture {
	p.t.Helper()

	dir := filepath.Join(label, "migrations")
	require.NoError(p.t, os.MkdirAll(dir, consts.ModeDir))

	for _, u := range units {
		require.NoError(p.t, os.WriteFile(filepath.Join(dir, u.Name+".yaml"), []byte(u.Content), consts.ModeFile),
			"Failed to write migration file: %s", u.Name)
	}

	p.Config.Apps = append(p.Config.Apps, config.App{Label: label, Dir: dir})
	p.writeConfig()
	return p
}

// WithInitialData writes the initial data fixture for app.
func (p *ProjectFixture) WithInitialData(app, content string) *ProjectFixture {
	p.t.Helper()

	dir := filepath.Join(p.Config.Fixtures, app)
	require.NoError(p.t, os.MkdirAll(dir, consts.ModeDir))
	require.NoError(p.t, os.WriteFile(filepath.Join(dir, consts.InitialDataFile), []byte(content), consts.ModeFile))
	return p
}

// MigrationsDir returns the migrations directory of app.
func (p *ProjectFixture) MigrationsDir(app string) string {
	return filepath.Join(p.Dir, app, "migrations")
}

// DB opens the project's SQLite database. It is closed when the test ends.
func (p *ProjectFixture) DB() *sql.DB {
	p.t.Helper()

	db, err := sql.Open("sqlite", p.Config.Databases[consts.DefaultDatabase].DSN)
	require.NoError(p.t, err)
	p.t.Cleanup(func() { _ = db.Close() })

	return db
}

// CreateTable returns a unit that creates and drops table.
func CreateTable(name, table string) UnitFile {
	return UnitFile{
		Name: name,
		Content: fmt.Sprintf(`forwards:
  - CREATE TABLE %[1]s (id INTEGER PRIMARY KEY, title TEXT)
backwards:
  - DROP TABLE %[1]s
models:
  %[1]s:
    Meta: {object_name: %[1]s, db_table: %[1]s}
    title: "('pkg.CharField', [], {'max_length': '255'})"
`, table),
	}
}

// AddColumn returns a unit that adds column to table.
func AddColumn(name, table, column string) UnitFile {
	return UnitFile{
		Name: name,
		Content: fmt.Sprintf(`forwards:
  - ALTER TABLE %[1]s ADD COLUMN %[2]s TEXT
backwards:
  - ALTER TABLE %[1]s DROP COLUMN %[2]s
`, table, column),
	}
}

func (p *ProjectFixture) writeConfig() {
	p.t.Helper()

	data, err := yaml.Marshal(p.Config)
	require.NoError(p.t, err, "Failed to marshal config")
	require.NoError(p.t, os.WriteFile(consts.ConfigFile, data, consts.ModeFile), "Failed to write config")
}
