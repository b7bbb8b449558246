package testutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes command as a subcommand of a test app and returns what
// it wrote. input is fed to the command's reader.
func RunCommand(t *testing.T, command *cli.Command, input string, args ...string) (string, error) {
	t.Helper()

	return RunCommandWithContext(context.Background(), t, command, input, args...)
}

// RunCommandWithContext executes a command with a custom context.
func RunCommandWithContext(ctx context.Context, t *testing.T, command *cli.Command, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := &cli.Command{
		Name:     "test",
		Reader:   strings.NewReader(input),
		Writer:   &out,
		Commands: []*cli.Command{command},
	}

	fullArgs := append([]string{"test", command.Name}, args...)
	err := app.Run(ctx, fullArgs)

	return out.String(), err
}
