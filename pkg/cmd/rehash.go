package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/config"
	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/pseudomuto/steward/pkg/migration"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type rehashParams struct {
	fx.In

	Config config.Provider
}

// rehash creates a CLI command that regenerates the steward.sum file of each
// app's migration directory.
//
// Run it after intentionally editing a migration file; migrate refuses to run
// an app whose files no longer match its sum file.
//
//	steward rehash        # every configured app
//	steward rehash blog   # just blog
func rehash(p rehashParams) *cli.Command {
	return &cli.Command{
		Name:      "rehash",
		Usage:     "Regenerate the sum file for each app's migrations",
		ArgsUsage: "[app]",
		Before:    requireConfig(p.Config),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			w := writer(cmd)

			apps := cfg.Apps
			if label := cmd.Args().First(); label != "" {
				app, ok := cfg.App(label)
				if !ok {
					return &migration.NoMigrationsError{App: label}
				}
				apps = []config.App{app}
			}

			for _, app := range apps {
				n, err := rehashApp(app)
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintf(w, "Skipped %s: migrations directory does not exist: %s\n", app.Label, app.Dir)
					continue
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(w, "Successfully rehashed %d migration(s) for %s\n", n, app.Label)
			}

			return nil
		},
	}
}

func rehashApp(app config.App) (int, error) {
	set, err := migration.LoadSet(app.Label, os.DirFS(app.Dir))
	if err != nil {
		return 0, err
	}

	path := filepath.Join(app.Dir, consts.SumFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.ModeFile)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create sum file: %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := set.SumFile().WriteTo(f); err != nil {
		return 0, errors.Wrapf(err, "failed to write sum file: %s", path)
	}

	return set.Len(), nil
}
