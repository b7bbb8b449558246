package migration_test

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/pseudomuto/steward/pkg/migration"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("syntax error")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "no migrations",
			err:      &NoMigrationsError{App: "blog"},
			sentinel: ErrNoMigrations,
			message:  "The app 'blog' does not appear to use migrations.",
		},
		{
			name:     "inconsistent history",
			err:      &InconsistentMigrationHistoryError{App: "blog", Missing: []string{"0002_tags"}},
			sentinel: ErrInconsistentMigrationHistory,
			message:  "inconsistent migration history for blog: unapplied migrations precede applied ones: 0002_tags",
		},
		{
			name:     "ghosts",
			err:      &GhostMigrationsError{App: "blog", Ghosts: []string{"0009_a", "0010_b"}},
			sentinel: ErrGhostMigrations,
			message:  "blog has applied migrations that are no longer on disk: 0009_a, 0010_b",
		},
		{
			name:     "unknown",
			err:      &UnknownMigrationError{App: "blog", Target: "0009"},
			sentinel: ErrUnknownMigration,
			message:  "migration '0009' not found in app 'blog'",
		},
		{
			name:     "ambiguous",
			err:      &AmbiguousMigrationError{App: "blog", Target: "0002", Matches: []string{"0002_a", "0002_b"}},
			sentinel: ErrAmbiguousMigration,
			message:  "migration prefix '0002' is ambiguous in app 'blog': 0002_a, 0002_b",
		},
		{
			name:     "execution",
			err:      &ExecutionError{App: "blog", Migration: "0002_tags", Direction: Backward, Err: cause},
			sentinel: ErrMigrationExecution,
			message:  "blog:0002_tags (backward) failed: syntax error",
		},
		{
			name:     "malformed snapshot",
			err:      &MalformedSnapshotError{Unit: "0002_tags", Model: "Post", Field: "title", Reason: "expected 3 elements"},
			sentinel: ErrMalformedSnapshot,
			message:  "malformed snapshot in 0002_tags at Post.title: expected 3 elements",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.EqualError(t, tt.err, tt.message)
			require.ErrorIs(t, tt.err, tt.sentinel)
			require.ErrorIs(t, errors.Wrap(tt.err, "context"), tt.sentinel)
		})
	}

	require.ErrorIs(t, &ExecutionError{Err: cause}, cause)
}
