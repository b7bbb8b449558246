package migration

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/consts"
)

// Set is the ordered collection of an app's units. Order is lexicographic by
// name and every name is unique.
type Set struct {
	App   string
	Units []*Unit

	// sum is computed from the unit files as loaded; stored is the sum file
	// found next to them, if any.
	sum    *SumFile
	stored *SumFile
}

// NewSet builds a set for app from units. Units are sorted by name and given
// their positions. A unit without a snapshot takes its predecessor's. Unless
// its file says otherwise, a unit whose snapshot introduces a model that its
// predecessor lacks is marked as creating.
func NewSet(app string, units ...*Unit) (*Set, error) {
	if app == "" {
		return nil, errors.New("app label is required")
	}

	sorted := slices.Clone(units)
	slices.SortFunc(sorted, func(a, b *Unit) int { return strings.Compare(a.Name, b.Name) })

	var prev Snapshot
	for i, u := range sorted {
		if u.Name == "" {
			return nil, errors.Errorf("%s: migration at position %d has no name", app, i)
		}

		if i > 0 && sorted[i-1].Name == u.Name {
			return nil, errors.Errorf("%s: duplicate migration name %s", app, u.Name)
		}

		u.App = app
		u.Position = i
		if u.Snapshot == nil {
			u.Snapshot = prev
		}

		if !u.explicitCreates && introducesModel(prev, u.Snapshot) {
			u.Creates = true
		}

		prev = u.Snapshot
	}

	return &Set{App: app, Units: sorted}, nil
}

func introducesModel(prev, next Snapshot) bool {
	for model := range next {
		if _, ok := prev[model]; !ok {
			return true
		}
	}

	return false
}

// Len returns the number of units.
func (s *Set) Len() int {
	return len(s.Units)
}

// Get returns the unit with the exact name, or nil.
func (s *Set) Get(name string) *Unit {
	if i := s.Index(name); i >= 0 {
		return s.Units[i]
	}

	return nil
}

// Index returns the position of the named unit, or -1.
func (s *Set) Index(name string) int {
	i, found := slices.BinarySearchFunc(s.Units, name, func(u *Unit, n string) int {
		return strings.Compare(u.Name, n)
	})
	if !found {
		return -1
	}

	return i
}

// Find resolves target to a unit. An exact name wins; otherwise target must
// be the prefix of exactly one unit name, so "0003" finds "0003_add_tags".
func (s *Set) Find(target string) (*Unit, error) {
	if u := s.Get(target); u != nil {
		return u, nil
	}

	var matches []string
	for _, u := range s.Units {
		if target != "" && strings.HasPrefix(u.Name, target) {
			matches = append(matches, u.Name)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &UnknownMigrationError{App: s.App, Target: target}
	case 1:
		return s.Get(matches[0]), nil
	default:
		return nil, &AmbiguousMigrationError{App: s.App, Target: target, Matches: matches}
	}
}

// Names returns every unit name in set order.
func (s *Set) Names() []string {
	names := make([]string, len(s.Units))
	for i, u := range s.Units {
		names[i] = u.Name
	}

	return names
}

// Latest returns the last unit, or nil for an empty set.
func (s *Set) Latest() *Unit {
	if len(s.Units) == 0 {
		return nil
	}

	return s.Units[len(s.Units)-1]
}

// SumFile returns the sum file computed from the loaded unit files. Sets that
// were not loaded from disk have an empty one.
func (s *Set) SumFile() *SumFile {
	if s.sum == nil {
		return NewSumFile()
	}

	return s.sum
}

// Validate checks the loaded unit files against the stored sum file. Sets
// without a stored sum file always validate.
func (s *Set) Validate() error {
	if s.stored == nil {
		return nil
	}

	if name := s.stored.FirstMismatch(s.SumFile()); name != "" {
		return errors.Errorf(
			"%s: %s does not match %s; run rehash if the change is intended",
			s.App,
			name,
			consts.SumFile,
		)
	}

	return nil
}
