package migration

import (
	"context"
	"maps"
	"slices"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/backend"
)

// Forward applies units, Backward reverts them.
const (
	Forward Direction = iota
	Backward
)

type (
	// Direction is the way a plan moves through a set.
	Direction int

	// Transformation is the body of a unit. The engine treats it as opaque:
	// it either succeeds or returns an error.
	Transformation interface {
		Apply(ctx context.Context, h backend.Handle) error
		Revert(ctx context.Context, h backend.Handle) error
	}

	// SQL is a Transformation made of statement lists, as read from unit files.
	SQL struct {
		Forwards  []string
		Backwards []string
	}

	// Funcs is a Transformation backed by Go functions. A nil function is a
	// no-op.
	Funcs struct {
		ApplyFunc  func(ctx context.Context, h backend.Handle) error
		RevertFunc func(ctx context.Context, h backend.Handle) error
	}

	// Snapshot maps model names to their fields. A field value is either a
	// nested mapping (an opaque class-valued field) or a field triple, written
	// as a 3-element sequence or in frozen text form.
	Snapshot map[string]map[string]any

	// Unit is one named step of an app's migration set.
	Unit struct {
		App            string
		Name           string
		Position       int
		Snapshot       Snapshot
		Transformation Transformation

		// Creates marks units that introduce new persisted structures. Fixtures
		// are loaded after these are applied.
		Creates bool

		// explicitCreates is set when a unit file spells out creates, which
		// turns off inference.
		explicitCreates bool
	}
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}

	return "forward"
}

func (s SQL) Apply(ctx context.Context, h backend.Handle) error {
	return runAll(ctx, h, s.Forwards)
}

func (s SQL) Revert(ctx context.Context, h backend.Handle) error {
	return runAll(ctx, h, s.Backwards)
}

func runAll(ctx context.Context, h backend.Handle, stmts []string) error {
	for i, stmt := range stmts {
		if err := h.Exec(ctx, stmt); err != nil {
			return errors.Wrapf(err, "statement %d", i+1)
		}
	}

	return nil
}

func (f Funcs) Apply(ctx context.Context, h backend.Handle) error {
	if f.ApplyFunc == nil {
		return nil
	}

	return f.ApplyFunc(ctx, h)
}

func (f Funcs) Revert(ctx context.Context, h backend.Handle) error {
	if f.RevertFunc == nil {
		return nil
	}

	return f.RevertFunc(ctx, h)
}

// Run invokes the unit's transformation in the given direction.
func (u *Unit) Run(ctx context.Context, h backend.Handle, dir Direction) error {
	if u.Transformation == nil {
		return nil
	}

	if dir == Backward {
		return u.Transformation.Revert(ctx, h)
	}

	return u.Transformation.Apply(ctx, h)
}

func (u *Unit) String() string {
	return u.App + ":" + u.Name
}

// Models returns the snapshot's model names in sorted order.
func (s Snapshot) Models() []string {
	return slices.Sorted(maps.Keys(s))
}

// DisplayName returns the model's Meta.object_name when present, otherwise
// the snapshot key.
func (s Snapshot) DisplayName(model string) string {
	meta, ok := s[model]["Meta"].(map[string]any)
	if !ok {
		return model
	}

	if name, ok := meta["object_name"].(string); ok && name != "" {
		return name
	}

	return model
}
