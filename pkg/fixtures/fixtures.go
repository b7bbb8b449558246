package fixtures

import (
	"context"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"slices"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/backend"
	"github.com/pseudomuto/steward/pkg/consts"
	"gopkg.in/yaml.v3"
)

type (
	// Loader loads an app's initial data through a handle.
	Loader interface {
		Load(ctx context.Context, app string, h backend.Handle) error
	}

	// Nop is a Loader that does nothing.
	Nop struct{}

	// Dir loads <app>/initial_data.yaml from a fixtures directory:
	//
	//	- table: blog_post
	//	  rows:
	//	    - {id: 1, title: Hello}
	//	    - {id: 2, title: World}
	Dir struct {
		fsys fs.FS
	}

	fixture struct {
		Table string           `yaml:"table"`
		Rows  []map[string]any `yaml:"rows"`
	}
)

func (Nop) Load(context.Context, string, backend.Handle) error { return nil }

// NewDir creates a loader reading fixtures from fsys.
func NewDir(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys}
}

// Load inserts every fixture row for app. A missing fixture file is not an
// error.
func (d *Dir) Load(ctx context.Context, app string, h backend.Handle) error {
	file := path.Join(app, consts.InitialDataFile)

	content, err := fs.ReadFile(d.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "failed to read fixtures: %s", file)
	}

	var fixtures []fixture
	if err := yaml.Unmarshal(content, &fixtures); err != nil {
		return errors.Wrapf(err, "failed to decode fixtures: %s", file)
	}

	dialect := h.Dialect()
	rows := 0
	for _, f := range fixtures {
		if f.Table == "" {
			return errors.Errorf("fixture in %s has no table", file)
		}

		for _, row := range f.Rows {
			columns := slices.Sorted(maps.Keys(row))
			args := make([]any, len(columns))
			for i, c := range columns {
				args[i] = row[c]
			}

			if err := h.Exec(ctx, dialect.Insert(f.Table, columns...), args...); err != nil {
				return errors.Wrapf(err, "failed to load fixture into %s", f.Table)
			}
			rows++
		}
	}

	slog.Info("Loaded initial data", "app", app, "file", file, "rows", rows)
	return nil
}
