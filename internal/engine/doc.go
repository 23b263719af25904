// Package engine runs batches of expression checks.
//
// A run has two phases:
//
//  1. Check: every expression is type-checked and unparsed. Expressions are
//     independent, so this phase fans out over a bounded worker pool.
//  2. Record: the run and its results are stamped with logical sequence
//     numbers in batch order and written to the store by a single writer.
//
// Results are reported in batch order regardless of which worker finished
// first, so a run over the same specs always produces the same report apart
// from its run ID and sequence numbers.
package engine
