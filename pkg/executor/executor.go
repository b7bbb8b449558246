package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/backend"
	"github.com/pseudomuto/steward/pkg/fixtures"
	"github.com/pseudomuto/steward/pkg/ledger"
	"github.com/pseudomuto/steward/pkg/migration"
	"github.com/pseudomuto/steward/pkg/resolver"
)

type (
	// Prompter asks the operator to confirm a destructive action.
	Prompter interface {
		Confirm(prompt string) (bool, error)
	}

	// PromptFunc adapts a function to the Prompter interface.
	PromptFunc func(prompt string) (bool, error)

	// Engine applies plans for one app at a time against a backend, keeping
	// the ledger in step. It holds no state between runs.
	//
	// Example usage:
	//
	//	engine := executor.New(executor.Config{
	//		Backend:  backend.NewSQL(db, backend.SQLite),
	//		Ledger:   ledger.NewSQL(db, backend.SQLite, ""),
	//		Fixtures: fixtures.NewDir(os.DirFS("fixtures")),
	//	})
	//
	//	result, err := engine.Migrate(ctx, set, "", executor.Options{LoadInitialData: true})
	Engine struct {
		backend  backend.Backend
		ledger   ledger.Ledger
		fixtures fixtures.Loader
		prompter Prompter
	}

	// Config contains the collaborators of an Engine.
	Config struct {
		Backend backend.Backend
		Ledger  ledger.Ledger

		// Fixtures loads initial data after create-type units. Defaults to
		// fixtures.Nop.
		Fixtures fixtures.Loader

		// Prompter confirms ghost deletion in interactive runs.
		Prompter Prompter
	}

	// Options control a single run.
	Options struct {
		// Fake toggles the ledger without running transformations.
		Fake bool

		// DryRun runs transformations on a handle that is never committed and
		// never writes the ledger.
		DryRun bool

		// Interactive asks before deleting ghost entries.
		Interactive bool

		// LoadInitialData loads the app's fixtures once, after the last
		// create-type unit of a forward plan.
		LoadInitialData bool

		// Verbosity (0..2) only changes how much is logged.
		Verbosity int

		Missing resolver.MissingPolicy
		Ghosts  resolver.GhostPolicy
	}

	// Result describes one app's run.
	Result struct {
		App    string
		RunID  string
		Plan   *migration.Plan
		Steps  []*StepResult
		Fake   bool
		DryRun bool

		// GhostsDeleted lists ledger entries removed before the plan ran.
		GhostsDeleted []string

		// Err is the error that ended the run, if any.
		Err error
	}

	// StepResult describes one unit of a plan.
	StepResult struct {
		Migration     string
		Direction     migration.Direction
		Status        StepStatus
		Error         error
		ExecutionTime time.Duration

		// LoadedInitialData is set on the step whose handle loaded the app's
		// initial data.
		LoadedInitialData bool
	}

	// StepStatus is the outcome of a single step.
	StepStatus string
)

const (
	// StatusSuccess indicates the step's transformation ran successfully
	StatusSuccess StepStatus = "success"

	// StatusFaked indicates the step only toggled the ledger
	StatusFaked StepStatus = "faked"

	// StatusFailed indicates the step's transformation failed
	StatusFailed StepStatus = "failed"
)

func (f PromptFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

// New creates an Engine from cfg.
func New(cfg Config) *Engine {
	loader := cfg.Fixtures
	if loader == nil {
		loader = fixtures.Nop{}
	}

	return &Engine{
		backend:  cfg.Backend,
		ledger:   cfg.Ledger,
		fixtures: loader,
		prompter: cfg.Prompter,
	}
}

// OK reports whether the run succeeded. Empty plans succeed.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Failed returns the failing step, or nil.
func (r *Result) Failed() *StepResult {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return s
		}
	}

	return nil
}

// Migrate reads the app's ledger entries, resolves a plan to target and
// applies it. The returned Result is never nil.
func (e *Engine) Migrate(ctx context.Context, set *migration.Set, target string, opts Options) (*Result, error) {
	runID := uuid.NewString()

	entries, err := e.ledger.Applied(ctx, set.App)
	if err != nil {
		err = errors.Wrapf(err, "failed to read ledger for %s", set.App)
		return &Result{App: set.App, RunID: runID, Fake: opts.Fake, DryRun: opts.DryRun, Err: err}, err
	}

	plan, err := resolver.Resolve(set, ledger.Names(entries), target, resolver.Policy{
		Missing: opts.Missing,
		Ghosts:  opts.Ghosts,
	})
	if err != nil {
		return &Result{App: set.App, RunID: runID, Fake: opts.Fake, DryRun: opts.DryRun, Err: err}, err
	}

	return e.apply(ctx, runID, plan, opts)
}

// MigrateAll migrates every set in order. A failing app is logged and the
// batch moves on; the returned bool is false if any app failed.
func (e *Engine) MigrateAll(ctx context.Context, sets []*migration.Set, target string, opts Options) ([]*Result, bool) {
	results := make([]*Result, 0, len(sets))
	ok := true

	for _, set := range sets {
		res, err := e.Migrate(ctx, set, target, opts)
		results = append(results, res)

		if err != nil {
			slog.Error("Migration failed", "app", set.App, "run", res.RunID, "error", err)
			ok = false
		}
	}

	return results, ok
}

// Apply runs plan strictly in order. Execution stops at the first failing
// step and earlier steps are not compensated. Ghost entries named by the plan
// are deleted first, except in dry runs.
func (e *Engine) Apply(ctx context.Context, plan *migration.Plan, opts Options) (*Result, error) {
	return e.apply(ctx, uuid.NewString(), plan, opts)
}

func (e *Engine) apply(ctx context.Context, runID string, plan *migration.Plan, opts Options) (*Result, error) {
	res := &Result{
		App:    plan.App,
		RunID:  runID,
		Plan:   plan,
		Fake:   opts.Fake,
		DryRun: opts.DryRun,
	}

	log := slog.With("run", res.RunID, "app", plan.App)

	if len(plan.Ghosts) > 0 && !opts.DryRun {
		if err := e.deleteGhosts(ctx, plan, opts); err != nil {
			res.Err = err
			return res, err
		}
		res.GhostsDeleted = plan.Ghosts
		log.Info("Deleted ghost migrations", "ghosts", plan.Ghosts)
	}

	if plan.Empty() {
		log.Info("Nothing to migrate")
		return res, nil
	}

	log.Info("Starting migration execution",
		"direction", plan.Direction,
		"steps", len(plan.Steps),
		"fake", opts.Fake,
		"dry_run", opts.DryRun,
	)

	var err error
	switch {
	case opts.DryRun && opts.Fake:
		for _, u := range plan.Steps {
			res.Steps = append(res.Steps, &StepResult{Migration: u.Name, Direction: plan.Direction, Status: StatusFaked})
		}
	case opts.DryRun:
		err = e.applyDryRun(ctx, plan, opts, res, log)
	default:
		err = e.applyReal(ctx, plan, opts, res, log)
	}

	if err != nil {
		res.Err = err
		return res, err
	}

	log.Info("Migration execution completed", "steps", len(res.Steps))
	return res, nil
}

// initialDataStep returns the unit whose handle loads the app's initial data:
// the last create-type unit of a forward plan. Initial data is loaded at most
// once per run.
func initialDataStep(plan *migration.Plan, opts Options) *migration.Unit {
	if plan.Direction != migration.Forward || !opts.LoadInitialData || opts.Fake {
		return nil
	}

	for i := len(plan.Steps) - 1; i >= 0; i-- {
		if plan.Steps[i].Creates {
			return plan.Steps[i]
		}
	}

	return nil
}

func (e *Engine) applyReal(ctx context.Context, plan *migration.Plan, opts Options, res *Result, log *slog.Logger) error {
	loadAfter := initialDataStep(plan, opts)

	for _, u := range plan.Steps {
		step := &StepResult{Migration: u.Name, Direction: plan.Direction}
		res.Steps = append(res.Steps, step)
		start := time.Now()

		if opts.Fake {
			step.Status = StatusFaked
		} else if err := e.runStep(ctx, u, plan.Direction, u == loadAfter, opts, step, log); err != nil {
			step.Status = StatusFailed
			step.Error = err
			step.ExecutionTime = time.Since(start)
			return &migration.ExecutionError{App: plan.App, Migration: u.Name, Direction: plan.Direction, Err: err}
		}

		if err := e.toggle(ctx, u, plan.Direction); err != nil {
			step.Status = StatusFailed
			step.Error = err
			return err
		}

		if !opts.Fake {
			step.Status = StatusSuccess
		}
		step.ExecutionTime = time.Since(start)

		if opts.Verbosity > 0 {
			log.Info("Migration step completed", "migration", u.Name, "status", step.Status, "duration", step.ExecutionTime)
		}
	}

	return nil
}

// runStep runs one unit on its own handle, loading fixtures into the same
// handle when loadData is set, and commits it.
func (e *Engine) runStep(
	ctx context.Context,
	u *migration.Unit,
	dir migration.Direction,
	loadData bool,
	opts Options,
	step *StepResult,
	log *slog.Logger,
) error {
	h, err := e.backend.Begin(ctx, backend.Real)
	if err != nil {
		return err
	}
	h = wrapHandle(h, opts, log)

	if err := e.transform(ctx, h, u, dir, loadData, step); err != nil {
		_ = h.Discard()
		return err
	}

	if err := h.Commit(); err != nil {
		_ = h.Discard()
		return err
	}

	return nil
}

func (e *Engine) applyDryRun(ctx context.Context, plan *migration.Plan, opts Options, res *Result, log *slog.Logger) error {
	h, err := e.backend.Begin(ctx, backend.DryRun)
	if err != nil {
		return errors.Wrap(err, "failed to begin dry run")
	}
	defer func() { _ = h.Discard() }()
	h = wrapHandle(h, opts, log)
	loadAfter := initialDataStep(plan, opts)

	for _, u := range plan.Steps {
		step := &StepResult{Migration: u.Name, Direction: plan.Direction}
		res.Steps = append(res.Steps, step)
		start := time.Now()

		err := e.transform(ctx, h, u, plan.Direction, u == loadAfter, step)
		step.ExecutionTime = time.Since(start)
		if err != nil {
			step.Status = StatusFailed
			step.Error = err
			return &migration.ExecutionError{App: plan.App, Migration: u.Name, Direction: plan.Direction, Err: err}
		}

		step.Status = StatusSuccess
	}

	return nil
}

func (e *Engine) transform(
	ctx context.Context,
	h backend.Handle,
	u *migration.Unit,
	dir migration.Direction,
	loadData bool,
	step *StepResult,
) error {
	if err := u.Run(ctx, h, dir); err != nil {
		return err
	}

	if loadData {
		if err := e.fixtures.Load(ctx, u.App, h); err != nil {
			return errors.Wrap(err, "failed to load initial data")
		}
		step.LoadedInitialData = true
	}

	return nil
}

func (e *Engine) toggle(ctx context.Context, u *migration.Unit, dir migration.Direction) error {
	if dir == migration.Backward {
		return errors.Wrapf(e.ledger.Unrecord(ctx, u.App, u.Name), "failed to unrecord %s", u)
	}

	return errors.Wrapf(e.ledger.Record(ctx, u.App, u.Name), "failed to record %s", u)
}

func (e *Engine) deleteGhosts(ctx context.Context, plan *migration.Plan, opts Options) error {
	if opts.Interactive {
		if e.prompter == nil {
			return errors.New("ghost deletion needs confirmation but no prompter is configured")
		}

		ok, err := e.prompter.Confirm(fmt.Sprintf(
			"Delete %d ghost migration(s) from the ledger for %s: %v?",
			len(plan.Ghosts),
			plan.App,
			plan.Ghosts,
		))
		if err != nil {
			return errors.Wrap(err, "failed to confirm ghost deletion")
		}

		if !ok {
			return &migration.GhostMigrationsError{App: plan.App, Ghosts: plan.Ghosts}
		}
	}

	for _, name := range plan.Ghosts {
		if err := e.ledger.DeleteGhost(ctx, plan.App, name); err != nil {
			return errors.Wrapf(err, "failed to delete ghost %s:%s", plan.App, name)
		}
	}

	return nil
}
