package ledger

import (
	"context"
	"time"
)

type (
	// Entry records that a unit is currently applied.
	Entry struct {
		App       string
		Name      string
		AppliedAt time.Time
	}

	// Ledger is the durable record of applied units. An entry exists exactly
	// when its unit is considered applied.
	Ledger interface {
		// Applied returns the app's entries ordered by name.
		Applied(ctx context.Context, app string) ([]Entry, error)
		Record(ctx context.Context, app, name string) error
		Unrecord(ctx context.Context, app, name string) error

		// DeleteGhost removes an entry whose unit no longer exists on disk.
		DeleteGhost(ctx context.Context, app, name string) error
	}
)

// Names returns the entry names in order.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	return names
}
