package migration

import (
	"bytes"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/consts"
	"gopkg.in/yaml.v3"
)

// unitFile is the on-disk form of a unit:
//
//	creates: true
//	forwards:
//	  - CREATE TABLE blog_post (id INTEGER PRIMARY KEY, title TEXT)
//	backwards:
//	  - DROP TABLE blog_post
//	models:
//	  Post:
//	    Meta: {object_name: Post, db_table: blog_post}
//	    title: "('pkg.CharField', [], {'max_length': '255'})"
//
// A unit without a models key keeps its predecessor's snapshot. Leaving out
// creates lets the set infer it from the snapshots.
type unitFile struct {
	Creates   *bool    `yaml:"creates"`
	Forwards  []string `yaml:"forwards"`
	Backwards []string `yaml:"backwards"`
	Models    Snapshot `yaml:"models"`
}

// LoadSet reads every unit file at the root of fsys into a Set for app.
// Files whose names begin with "_" or "." are ignored, as is anything that is
// not a .yaml or .yml file. A steward.sum file, when present, is loaded so the
// set can be validated.
//
//	set, err := migration.LoadSet("blog", os.DirFS("blog/migrations"))
func LoadSet(app string, fsys fs.FS) (*Set, error) {
	// NB: ReadDir returns entries sorted by filename.
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read migrations for %s", app)
	}

	var (
		units []*Unit
		sum   = NewSumFile()
	)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isUnitFile(name) {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read migration: %s", name)
		}

		unit, err := LoadUnit(strings.TrimSuffix(name, path.Ext(name)), content)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load migration: %s", name)
		}

		units = append(units, unit)
		sum.AddFile(name, content)
	}

	set, err := NewSet(app, units...)
	if err != nil {
		return nil, err
	}
	set.sum = sum

	stored, err := fs.ReadFile(fsys, consts.SumFile)
	switch {
	case err == nil:
		set.stored, err = LoadSumFile(bytes.NewReader(stored))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s for %s", consts.SumFile, app)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, errors.Wrapf(err, "failed to read %s for %s", consts.SumFile, app)
	}

	return set, nil
}

// LoadUnit decodes a single unit file. The returned unit has no app or
// position until it is added to a Set.
func LoadUnit(name string, content []byte) (*Unit, error) {
	var f unitFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", name)
	}

	u := &Unit{
		Name:           name,
		Snapshot:       f.Models,
		Transformation: SQL{Forwards: f.Forwards, Backwards: f.Backwards},
	}

	if f.Creates != nil {
		u.Creates = *f.Creates
		u.explicitCreates = true
	}

	return u, nil
}

func isUnitFile(name string) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false
	}

	ext := path.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
