package resolver

import (
	"slices"

	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/pseudomuto/steward/pkg/migration"
)

// Policies for unapplied units that precede an applied one.
const (
	MissingFail MissingPolicy = iota
	MissingSkip
	MissingMerge
)

// Policies for ledger entries with no unit on disk.
const (
	GhostFail GhostPolicy = iota
	GhostIgnore
	GhostDelete
)

type (
	MissingPolicy int
	GhostPolicy   int

	// Policy selects how history anomalies are handled.
	Policy struct {
		Missing MissingPolicy
		Ghosts  GhostPolicy
	}
)

// Resolve computes the plan that moves set from the applied names to target.
// target is a unit name or unique name prefix, consts.TargetZero to revert
// everything, or empty for the latest unit. Resolve has no side effects.
//
// The set is partitioned around two indexes: t, the target's position, and
// last, the position of the latest applied unit. A target before last moves
// backward through the applied units after t, newest first. Otherwise the
// plan moves forward and the unapplied units split into missing (before last)
// and tail (after last, up to t); the missing policy decides what happens to
// the former.
func Resolve(set *migration.Set, applied []string, target string, policy Policy) (*migration.Plan, error) {
	plan := &migration.Plan{App: set.App, Direction: migration.Forward}

	isApplied := make(map[string]bool, len(applied))
	var ghosts []string
	for _, name := range applied {
		if set.Get(name) == nil {
			ghosts = append(ghosts, name)
			continue
		}

		isApplied[name] = true
	}

	if len(ghosts) > 0 {
		slices.Sort(ghosts)
		ghosts = slices.Compact(ghosts)

		switch policy.Ghosts {
		case GhostFail:
			return nil, &migration.GhostMigrationsError{App: set.App, Ghosts: ghosts}
		case GhostDelete:
			plan.Ghosts = ghosts
		}
	}

	t, err := targetIndex(set, target)
	if err != nil {
		return nil, err
	}

	last := -1
	for i, u := range set.Units {
		if isApplied[u.Name] {
			last = i
		}
	}

	if target == consts.TargetZero || t < last {
		plan.Direction = migration.Backward
		for i := last; i > t; i-- {
			if u := set.Units[i]; isApplied[u.Name] {
				plan.Steps = append(plan.Steps, u)
			}
		}

		return plan, nil
	}

	var missing, tail []*migration.Unit
	for i, u := range set.Units {
		switch {
		case isApplied[u.Name]:
		case i < last:
			missing = append(missing, u)
		case i <= t:
			tail = append(tail, u)
		}
	}

	switch {
	case len(missing) == 0:
		plan.Steps = tail
	case policy.Missing == MissingSkip:
		plan.Steps = tail
		plan.Skipped = names(missing)
	case policy.Missing == MissingMerge:
		plan.Steps = append(missing, tail...)
	default:
		return nil, &migration.InconsistentMigrationHistoryError{App: set.App, Missing: names(missing)}
	}

	return plan, nil
}

func targetIndex(set *migration.Set, target string) (int, error) {
	switch target {
	case "":
		return set.Len() - 1, nil
	case consts.TargetZero:
		return -1, nil
	}

	u, err := set.Find(target)
	if err != nil {
		return 0, err
	}

	return u.Position, nil
}

func names(units []*migration.Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Name
	}

	return out
}
