package backend

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// Recorder is an in-memory Backend that remembers every statement it is
	// given. Committed holds statements from committed handles, Discarded the
	// ones from handles that were thrown away.
	Recorder struct {
		Committed []string
		Discarded []string

		// FailOn, when set, is consulted before each statement; a non-nil
		// error fails the Exec call.
		FailOn func(query string) error

		begins  []Mode
		dialect Dialect
	}

	recordHandle struct {
		rec     *Recorder
		mode    Mode
		pending []string
		done    bool
	}
)

// NewRecorder creates a Recorder that reports the given dialect.
func NewRecorder(dialect Dialect) *Recorder {
	return &Recorder{dialect: dialect}
}

func (r *Recorder) Begin(_ context.Context, mode Mode) (Handle, error) {
	r.begins = append(r.begins, mode)
	return &recordHandle{rec: r, mode: mode}, nil
}

// Begins returns the modes of all handles opened so far.
func (r *Recorder) Begins() []Mode {
	return r.begins
}

func (h *recordHandle) Exec(_ context.Context, query string, _ ...any) error {
	if h.done {
		return errors.New("handle already closed")
	}

	if h.rec.FailOn != nil {
		if err := h.rec.FailOn(query); err != nil {
			return err
		}
	}

	h.pending = append(h.pending, query)
	return nil
}

func (h *recordHandle) Commit() error {
	if h.mode == DryRun {
		return ErrDryRunCommit
	}

	if h.done {
		return errors.New("handle already closed")
	}

	h.done = true
	h.rec.Committed = append(h.rec.Committed, h.pending...)
	return nil
}

func (h *recordHandle) Discard() error {
	if h.done {
		return nil
	}

	h.done = true
	h.rec.Discarded = append(h.rec.Discarded, h.pending...)
	return nil
}

func (h *recordHandle) Mode() Mode       { return h.mode }
func (h *recordHandle) Dialect() Dialect { return h.rec.dialect }
