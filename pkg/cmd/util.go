package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/steward/pkg/config"
	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/pseudomuto/steward/pkg/executor"
	"github.com/urfave/cli/v3"
)

type configKey struct{}

// requireConfig loads steward.yaml and stores it on the context for the
// command's action.
func requireConfig(load config.Provider) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		cfg, err := load()
		if err != nil {
			return ctx, err
		}

		if cfg == nil {
			return ctx, errors.Errorf("%s not found", consts.ConfigFile)
		}

		return context.WithValue(ctx, configKey{}, cfg), nil
	}
}

func configFrom(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}

// writer and reader use the root command's streams; subcommands always
// default theirs to os.Stdout and os.Stdin.
func writer(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func reader(cmd *cli.Command) io.Reader {
	return cmd.Root().Reader
}

// linePrompter asks yes/no questions on a terminal.
func linePrompter(in io.Reader, out io.Writer) executor.Prompter {
	scanner := bufio.NewScanner(in)

	return executor.PromptFunc(func(prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N] ", prompt)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, errors.Wrap(err, "failed to read answer")
			}

			return false, nil
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true, nil
		}

		return false, nil
	})
}
