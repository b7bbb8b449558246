// Package schemadiff reports structural changes between the schema snapshots
// of consecutive migration units.
//
// Diff compares models, then fields of shared models, then the attributes of
// shared fields. Field triples are compared by type, positional attributes
// and keyword attributes; class-valued fields (nested mappings) are opaque.
// Any positional attribute is flagged since they are expected to be empty.
//
//	for _, report := range schemadiff.DiffSet(set) {
//		for _, change := range report.Changes {
//			fmt.Println(change)
//		}
//	}
//
// The differ never mutates its inputs and never fails; malformed snapshot
// values are collected in Report.Problems and the rest of the diff continues.
package schemadiff
