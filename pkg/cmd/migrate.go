package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/config"
	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/pseudomuto/steward/pkg/database"
	"github.com/pseudomuto/steward/pkg/executor"
	"github.com/pseudomuto/steward/pkg/fixtures"
	"github.com/pseudomuto/steward/pkg/format"
	"github.com/pseudomuto/steward/pkg/migration"
	"github.com/pseudomuto/steward/pkg/registry"
	"github.com/pseudomuto/steward/pkg/resolver"
	"github.com/pseudomuto/steward/pkg/schemadiff"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

var errMigrationFailed = errors.New("one or more migrations failed")

type migrateParams struct {
	fx.In

	Config config.Provider
}

// migrate creates the migrate command, which moves one app (or every app) to
// a target migration.
//
// Positional arguments:
//   - app: the app label; omitted (or with --all) every app is migrated
//   - target: a migration name, a unique prefix of one, or "zero"; omitted
//     means the latest migration
//
// Example usage:
//
//	steward migrate blog
//	steward migrate blog 0002
//	steward migrate --all zero --db-dry-run
//	steward migrate blog --fake 0004_tags
func migrate(p migrateParams) *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Apply or revert migrations",
		ArgsUsage: "[app] [migration|zero]",
		Description: `Move an app's schema to the requested migration, applying pending
migrations forwards or reverting applied ones backwards.

Each migration runs in its own transaction where the database supports it and
is recorded in the ledger only once it has succeeded. A run stops at the first
failing migration; earlier migrations stay applied.`,
		Before: requireConfig(p.Config),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "migrate every app; the first argument is the target",
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list migrations and whether they are applied",
			},
			&cli.BoolFlag{
				Name:  "changes",
				Usage: "describe the schema changes each migration makes",
			},
			&cli.BoolFlag{
				Name:  "skip",
				Usage: "skip unapplied migrations older than the latest applied one",
			},
			&cli.BoolFlag{
				Name:  "merge",
				Usage: "apply unapplied migrations older than the latest applied one",
			},
			&cli.BoolFlag{
				Name:  "no-initial-data",
				Usage: "don't load initial data after creating models",
			},
			&cli.BoolFlag{
				Name:  "fake",
				Usage: "record migrations as applied or reverted without running them",
			},
			&cli.BoolFlag{
				Name:  "db-dry-run",
				Usage: "run migrations without committing or recording them",
			},
			&cli.BoolFlag{
				Name:  "delete-ghost-migrations",
				Usage: "remove ledger entries for migrations that no longer exist",
			},
			&cli.BoolFlag{
				Name:  "ignore-ghost-migrations",
				Usage: "ignore ledger entries for migrations that no longer exist",
			},
			&cli.BoolFlag{
				Name:  "noinput",
				Usage: "never prompt for confirmation",
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "the database alias to migrate",
				Value: consts.DefaultDatabase,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.IntFlag{
				Name:    "verbosity",
				Aliases: []string{"v"},
				Usage:   "output verbosity: 0, 1 or 2",
				Value:   1,
				Validator: func(v int) error {
					if v < 0 || v > 2 {
						return errors.Errorf("verbosity must be 0, 1 or 2, got %d", v)
					}
					return nil
				},
			},
		},
		Action: runMigrate,
	}
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	w := writer(cmd)

	opts, err := migrateOptions(cmd)
	if err != nil {
		return err
	}

	app, target, err := migrateArgs(cmd)
	if err != nil {
		return err
	}

	reg, err := registry.Load(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to load migrations")
	}

	sets, ok := selectSets(w, reg, app)
	if len(sets) == 0 && !ok {
		return errMigrationFailed
	}

	fmtr := format.New(format.FormatterOptions{Verbosity: opts.Verbosity})

	list, changes := cmd.Bool("list"), cmd.Bool("changes")
	if changes && !list {
		if err := printChanges(w, fmtr, sets); err != nil {
			return err
		}

		return migrateResult(ok)
	}

	alias := cmd.String("database")
	db, err := database.Open(ctx, cfg, alias)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if list {
		if err := listSets(ctx, w, fmtr, db, sets); err != nil {
			return err
		}

		if changes {
			if err := printChanges(w, fmtr, sets); err != nil {
				return err
			}
		}

		return migrateResult(ok)
	}

	engine := executor.New(executor.Config{
		Backend:  db.Backend,
		Ledger:   db.Ledger,
		Fixtures: fixtures.NewDir(os.DirFS(cfg.Fixtures)),
		Prompter: linePrompter(reader(cmd), w),
	})

	slog.Info("Starting migration execution",
		"apps", len(sets),
		"target", target,
		"database", alias,
		"fake", opts.Fake,
		"dry_run", opts.DryRun,
	)

	results, migrated := engine.MigrateAll(ctx, sets, target, opts)
	for _, res := range results {
		if err := fmtr.Results(w, res); err != nil {
			return err
		}
	}

	if opts.DryRun && opts.Verbosity > 0 {
		printCapturedStatements(w, db.Backend)
	}

	return migrateResult(ok && migrated)
}

func migrateResult(ok bool) error {
	if !ok {
		return errMigrationFailed
	}

	return nil
}

func migrateOptions(cmd *cli.Command) (executor.Options, error) {
	opts := executor.Options{
		Fake:            cmd.Bool("fake"),
		DryRun:          cmd.Bool("db-dry-run"),
		Interactive:     !cmd.Bool("noinput"),
		LoadInitialData: !cmd.Bool("no-initial-data"),
		Verbosity:       cmd.Int("verbosity"),
	}

	switch {
	case cmd.Bool("skip") && cmd.Bool("merge"):
		return opts, errors.New("--skip and --merge cannot be used together")
	case cmd.Bool("skip"):
		opts.Missing = resolver.MissingSkip
	case cmd.Bool("merge"):
		opts.Missing = resolver.MissingMerge
	}

	switch {
	case cmd.Bool("delete-ghost-migrations") && cmd.Bool("ignore-ghost-migrations"):
		return opts, errors.New("--delete-ghost-migrations and --ignore-ghost-migrations cannot be used together")
	case cmd.Bool("delete-ghost-migrations"):
		opts.Ghosts = resolver.GhostDelete
	case cmd.Bool("ignore-ghost-migrations"):
		opts.Ghosts = resolver.GhostIgnore
	}

	return opts, nil
}

// migrateArgs splits the positional arguments into app and target. With --all
// the first argument is the target.
func migrateArgs(cmd *cli.Command) (app, target string, err error) {
	args := cmd.Args().Slice()
	if cmd.Bool("all") {
		args = append([]string{""}, args...)
	}

	if len(args) > 2 {
		return "", "", errors.Errorf("too many arguments: %v", cmd.Args().Slice())
	}

	if len(args) > 0 {
		app = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}

	return app, target, nil
}

// selectSets returns the set for app, or every set when app is empty. Apps
// that failed to load or whose unit files don't match their sum file are
// reported and left out, so the rest of the batch still runs. The returned
// bool is false when any app was left out this way.
func selectSets(w io.Writer, reg *registry.Registry, app string) ([]*migration.Set, bool) {
	var (
		candidates []*migration.Set
		ok         = true
	)

	if app == "" {
		candidates = reg.Sets()
		for _, err := range reg.Errors() {
			fmt.Fprintf(w, " ! %s\n", err)
			ok = false
		}
	} else {
		set, err := reg.Set(app)
		if err != nil {
			if errors.Is(err, migration.ErrNoMigrations) {
				fmt.Fprintln(w, err)
			} else {
				fmt.Fprintf(w, " ! %s\n", err)
			}
			return nil, false
		}
		candidates = []*migration.Set{set}
	}

	sets := make([]*migration.Set, 0, len(candidates))
	for _, set := range candidates {
		if err := set.Validate(); err != nil {
			fmt.Fprintf(w, " ! %s\n", err)
			ok = false
			continue
		}

		sets = append(sets, set)
	}

	return sets, ok
}

func printChanges(w io.Writer, fmtr *format.Formatter, sets []*migration.Set) error {
	for _, set := range sets {
		if err := fmtr.Changes(w, set.App, schemadiff.DiffSet(set)); err != nil {
			return err
		}
	}

	return nil
}

func listSets(ctx context.Context, w io.Writer, fmtr *format.Formatter, db *database.Database, sets []*migration.Set) error {
	for _, set := range sets {
		entries, err := db.Ledger.Applied(ctx, set.App)
		if err != nil {
			return err
		}

		if err := fmtr.List(w, set, entries); err != nil {
			return err
		}
	}

	return nil
}

// printCapturedStatements shows what a backend that cannot roll back (such as
// ClickHouse) would have run.
func printCapturedStatements(w io.Writer, b any) {
	rec, ok := b.(interface{ Statements() []string })
	if !ok {
		return
	}

	stmts := rec.Statements()
	if len(stmts) == 0 {
		return
	}

	fmt.Fprintln(w, " - Statements that would have been executed:")
	for _, stmt := range stmts {
		fmt.Fprintf(w, "   %s;\n", stmt)
	}
}
