package format

import (
	"io"

	"github.com/pseudomuto/steward/pkg/ledger"
	"github.com/pseudomuto/steward/pkg/migration"
)

// List writes one line per unit of set, marking the applied ones:
//
//	 blog
//	  (*) 0001_initial
//	  ( ) 0002_tags
//
// At verbosity 2 applied units also show when they were applied.
func (f *Formatter) List(w io.Writer, set *migration.Set, entries []ledger.Entry) error {
	applied := make(map[string]ledger.Entry, len(entries))
	for _, e := range entries {
		applied[e.Name] = e
	}

	var p printer
	p.line(" %s", set.App)

	for _, u := range set.Units {
		e, ok := applied[u.Name]
		switch {
		case !ok:
			p.line("  ( ) %s", u.Name)
		case f.options.Verbosity >= 2:
			p.line("  (*) %-80s  (applied %s)", u.Name, e.AppliedAt.Format(f.options.TimeFormat))
		default:
			p.line("  (*) %s", u.Name)
		}
	}

	return p.flush(w)
}

// List writes set's listing with Defaults and the given verbosity.
func List(w io.Writer, set *migration.Set, entries []ledger.Entry, verbosity int) error {
	opts := Defaults
	opts.Verbosity = verbosity
	return New(opts).List(w, set, entries)
}
