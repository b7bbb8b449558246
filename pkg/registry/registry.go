package registry

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/config"
	"github.com/pseudomuto/steward/pkg/migration"
)

// Registry is the immutable set of apps that use migrations.
type Registry struct {
	apps []string
	sets map[string]*migration.Set

	// broken holds apps whose migrations could not be loaded, in
	// configuration order, with the reason in errs.
	broken []string
	errs   map[string]error
}

// New builds a registry from sets, keeping their order.
func New(sets ...*migration.Set) (*Registry, error) {
	r := &Registry{
		apps: make([]string, 0, len(sets)),
		sets: make(map[string]*migration.Set, len(sets)),
		errs: make(map[string]error),
	}

	for _, set := range sets {
		if _, ok := r.sets[set.App]; ok {
			return nil, errors.Errorf("app %s is registered more than once", set.App)
		}

		r.apps = append(r.apps, set.App)
		r.sets[set.App] = set
	}

	return r, nil
}

// Load reads the migration directory of every app in cfg. Apps whose
// directory does not exist or holds no migrations are left out, so asking
// for them yields a NoMigrationsError.
//
// An app whose unit files cannot be loaded does not stop the others. It is
// left out as well and its error is reported by Errors and Set.
func Load(cfg *config.Config) (*Registry, error) {
	sets := make([]*migration.Set, 0, len(cfg.Apps))
	var broken []string
	errs := make(map[string]error)

	for _, app := range cfg.Apps {
		set, err := migration.LoadSet(app.Label, os.DirFS(app.Dir))
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Skipping app without migrations directory", "app", app.Label, "dir", app.Dir)
			continue
		}
		if err != nil {
			slog.Warn("Failed to load migrations", "app", app.Label, "dir", app.Dir, "error", err)
			broken = append(broken, app.Label)
			errs[app.Label] = errors.Wrapf(err, "failed to load migrations for %s", app.Label)
			continue
		}

		if set.Len() == 0 {
			slog.Debug("Skipping app without migrations", "app", app.Label, "dir", app.Dir)
			continue
		}

		sets = append(sets, set)
	}

	r, err := New(sets...)
	if err != nil {
		return nil, err
	}

	r.broken = broken
	r.errs = errs
	return r, nil
}

// Apps returns the labels of every app with migrations, in configuration order.
func (r *Registry) Apps() []string {
	return append([]string(nil), r.apps...)
}

// Set returns the migration set for app. An app that failed to load returns
// its load error.
func (r *Registry) Set(app string) (*migration.Set, error) {
	if err, ok := r.errs[app]; ok {
		return nil, err
	}

	set, ok := r.sets[app]
	if !ok {
		return nil, &migration.NoMigrationsError{App: app}
	}

	return set, nil
}

// Sets returns every migration set, in configuration order.
func (r *Registry) Sets() []*migration.Set {
	sets := make([]*migration.Set, len(r.apps))
	for i, app := range r.apps {
		sets[i] = r.sets[app]
	}

	return sets
}

// Errors returns the load error of every app that could not be loaded, in
// configuration order.
func (r *Registry) Errors() []error {
	errs := make([]error, len(r.broken))
	for i, app := range r.broken {
		errs[i] = r.errs[app]
	}

	return errs
}
