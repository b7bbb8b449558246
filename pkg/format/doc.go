// Package format renders the human readable reports of the migrate command.
//
// Three reports are supported:
//   - List: every unit of an app marked (*) when applied or ( ) when not
//   - Changes: the schema differ's change log for an app
//   - Results: the outcome of applying a plan
//
// Usage:
//
//	// Object-oriented API with default options
//	formatter := format.New(format.Defaults)
//	err := formatter.List(os.Stdout, set, entries)
//
//	// Functional API
//	err := format.Results(os.Stdout, result, 2)
//
// Output goes to the writer in a single Write call per report.
package format
