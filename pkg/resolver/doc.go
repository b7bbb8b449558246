// Package resolver turns a migration set, the names recorded in the ledger
// and a requested target into an execution plan.
//
//	plan, err := resolver.Resolve(set, ledger.Names(entries), "0003", resolver.Policy{
//		Missing: resolver.MissingMerge,
//	})
//
// Ghost entries (applied names with no unit) fail resolution unless the
// policy ignores them or asks for their deletion. Unapplied units that precede
// an applied one fail resolution unless the policy skips or merges them.
package resolver
