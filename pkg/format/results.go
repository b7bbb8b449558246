package format

import (
	"io"
	"strings"

	"github.com/pseudomuto/steward/pkg/executor"
	"github.com/pseudomuto/steward/pkg/migration"
)

// Results writes the outcome of one app's run. Errors are always written;
// progress only from verbosity 1 and timings only at verbosity 2.
func (f *Formatter) Results(w io.Writer, res *executor.Result) error {
	var p printer
	verbose := f.options.Verbosity >= 1

	if verbose {
		switch {
		case res.DryRun && res.Fake:
			p.line("Running migrations for %s (dry run, faked):", res.App)
		case res.DryRun:
			p.line("Running migrations for %s (dry run):", res.App)
		default:
			p.line("Running migrations for %s:", res.App)
		}
	}

	if res.Plan == nil {
		if res.Err != nil {
			p.line(" ! %s", res.Err)
		}
		return p.flush(w)
	}

	if verbose {
		if len(res.GhostsDeleted) > 0 {
			p.line(" - Deleted ghost migrations: %s", strings.Join(res.GhostsDeleted, ", "))
		}

		if len(res.Plan.Skipped) > 0 {
			p.line(" - Skipped out-of-order migrations: %s", strings.Join(res.Plan.Skipped, ", "))
		}

		switch {
		case res.Plan.Empty():
			p.line(" - Nothing to migrate.")
		case res.Plan.Direction == migration.Backward:
			p.line(" - Migrating backwards, reverting %d migration(s).", len(res.Plan.Steps))
		default:
			p.line(" - Migrating forwards to %s.", res.Plan.Steps[len(res.Plan.Steps)-1].Name)
		}
	}

	for _, step := range res.Steps {
		if step.Status == executor.StatusFailed {
			p.line(" ! Error in migration: %s:%s", res.App, step.Migration)
			p.line(" ! %s", step.Error)
			continue
		}

		if !verbose {
			continue
		}

		suffix := ""
		if step.Status == executor.StatusFaked {
			suffix = " (faked)"
		}
		if f.options.Verbosity >= 2 {
			suffix += " (" + step.ExecutionTime.String() + ")"
		}

		p.line(" > %s:%s%s", res.App, step.Migration, suffix)
		if step.LoadedInitialData {
			p.line(" - Loading initial data for %s.", res.App)
		}
	}

	if res.Err != nil && res.Failed() == nil {
		p.line(" ! %s", res.Err)
	}

	return p.flush(w)
}

// Results writes res with Defaults and the given verbosity.
func Results(w io.Writer, res *executor.Result, verbosity int) error {
	opts := Defaults
	opts.Verbosity = verbosity
	return New(opts).Results(w, res)
}
