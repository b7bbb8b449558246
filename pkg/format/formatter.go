package format

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// FormatterOptions controls report output.
type FormatterOptions struct {
	// Verbosity is 0 (errors only), 1 (normal) or 2 (detailed).
	Verbosity int

	// TimeFormat renders applied timestamps at verbosity 2.
	TimeFormat string
}

// Defaults are the options used by the package-level functions.
var Defaults = FormatterOptions{
	Verbosity:  1,
	TimeFormat: time.DateTime,
}

// Formatter renders migration listings, change logs and run results.
type Formatter struct {
	options FormatterOptions
}

// New creates a Formatter. A zero TimeFormat falls back to Defaults.
func New(opts FormatterOptions) *Formatter {
	if opts.TimeFormat == "" {
		opts.TimeFormat = Defaults.TimeFormat
	}

	return &Formatter{options: opts}
}

// printer buffers a report so it reaches the writer in a single call.
type printer struct {
	sb strings.Builder
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) flush(w io.Writer) error {
	_, err := io.WriteString(w, p.sb.String())
	return err
}
