// Package compare provides generic helpers for comparing slices and maps.
//
// The schema differ uses Keys to split two snapshots into added, removed and
// shared models, fields and attributes in a deterministic order.
package compare
