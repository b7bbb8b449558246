package migration

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrNoMigrations                 = errors.New("no migrations")
	ErrInconsistentMigrationHistory = errors.New("inconsistent migration history")
	ErrGhostMigrations              = errors.New("ghost migrations")
	ErrUnknownMigration             = errors.New("unknown migration")
	ErrAmbiguousMigration           = errors.New("ambiguous migration")
	ErrMigrationExecution           = errors.New("migration failed")
	ErrMalformedSnapshot            = errors.New("malformed schema snapshot")
)

type (
	// NoMigrationsError is returned when an app has no migration set.
	NoMigrationsError struct {
		App string
	}

	// InconsistentMigrationHistoryError lists unapplied units that precede an
	// applied one.
	InconsistentMigrationHistoryError struct {
		App     string
		Missing []string
	}

	// GhostMigrationsError lists ledger entries with no unit on disk.
	GhostMigrationsError struct {
		App    string
		Ghosts []string
	}

	UnknownMigrationError struct {
		App    string
		Target string
	}

	AmbiguousMigrationError struct {
		App     string
		Target  string
		Matches []string
	}

	// ExecutionError wraps the failure of a single unit's transformation.
	ExecutionError struct {
		App       string
		Migration string
		Direction Direction
		Err       error
	}

	// MalformedSnapshotError describes a snapshot value with an unexpected
	// shape.
	MalformedSnapshotError struct {
		Unit   string
		Model  string
		Field  string
		Reason string
	}
)

func (e *NoMigrationsError) Error() string {
	return fmt.Sprintf("The app '%s' does not appear to use migrations.", e.App)
}

func (e *NoMigrationsError) Is(target error) bool { return target == ErrNoMigrations }

func (e *InconsistentMigrationHistoryError) Error() string {
	return fmt.Sprintf(
		"inconsistent migration history for %s: unapplied migrations precede applied ones: %s",
		e.App,
		strings.Join(e.Missing, ", "),
	)
}

func (e *InconsistentMigrationHistoryError) Is(target error) bool {
	return target == ErrInconsistentMigrationHistory
}

func (e *GhostMigrationsError) Error() string {
	return fmt.Sprintf(
		"%s has applied migrations that are no longer on disk: %s",
		e.App,
		strings.Join(e.Ghosts, ", "),
	)
}

func (e *GhostMigrationsError) Is(target error) bool { return target == ErrGhostMigrations }

func (e *UnknownMigrationError) Error() string {
	return fmt.Sprintf("migration '%s' not found in app '%s'", e.Target, e.App)
}

func (e *UnknownMigrationError) Is(target error) bool { return target == ErrUnknownMigration }

func (e *AmbiguousMigrationError) Error() string {
	return fmt.Sprintf(
		"migration prefix '%s' is ambiguous in app '%s': %s",
		e.Target,
		e.App,
		strings.Join(e.Matches, ", "),
	)
}

func (e *AmbiguousMigrationError) Is(target error) bool { return target == ErrAmbiguousMigration }

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s:%s (%s) failed: %v", e.App, e.Migration, e.Direction, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrMigrationExecution }

func (e *MalformedSnapshotError) Error() string {
	loc := e.Model
	if e.Field != "" {
		loc += "." + e.Field
	}

	return fmt.Sprintf("malformed snapshot in %s at %s: %s", e.Unit, loc, e.Reason)
}

func (e *MalformedSnapshotError) Is(target error) bool { return target == ErrMalformedSnapshot }
