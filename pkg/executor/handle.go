package executor

import (
	"context"
	"log/slog"

	"github.com/pseudomuto/steward/pkg/backend"
)

// loggingHandle logs every statement before passing it on.
type loggingHandle struct {
	backend.Handle
	log *slog.Logger
}

// wrapHandle logs statements at verbosity 2 and above.
func wrapHandle(h backend.Handle, opts Options, log *slog.Logger) backend.Handle {
	if opts.Verbosity < 2 {
		return h
	}

	return &loggingHandle{Handle: h, log: log}
}

func (h *loggingHandle) Exec(ctx context.Context, query string, args ...any) error {
	h.log.Info("Executing statement", "mode", h.Mode(), "sql", query)
	return h.Handle.Exec(ctx, query, args...)
}
