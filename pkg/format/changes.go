package format

import (
	"io"

	"github.com/pseudomuto/steward/pkg/schemadiff"
)

// Changes writes the change log of app's reports, one block per unit:
//
//	 blog
//	  0002_tags
//	    added model Tag
func (f *Formatter) Changes(w io.Writer, app string, reports []*schemadiff.Report) error {
	var p printer
	p.line(" %s", app)

	for _, r := range reports {
		p.line("  %s", r.To)
		for _, c := range r.Changes {
			p.line("    %s", c)
		}

		for _, problem := range r.Problems {
			p.line("    ! %s", problem)
		}
	}

	return p.flush(w)
}

// Changes writes app's change log with Defaults.
func Changes(w io.Writer, app string, reports []*schemadiff.Report) error {
	return New(Defaults).Changes(w, app, reports)
}
