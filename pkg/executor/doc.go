// Package executor applies migration plans.
//
// An Engine resolves a plan for an app from the ledger and a target, then
// runs its steps one at a time. Each real step gets its own backend handle,
// which is committed before the ledger is updated. A failing step stops the
// run; steps that already succeeded stay applied.
//
// Fake runs only toggle ledger entries. Dry runs execute every step on a
// single handle that is discarded at the end and never touch the ledger.
// Combining both does nothing at all beyond reporting the plan.
package executor
