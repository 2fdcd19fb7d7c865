// Package diff provides the pure reconciliation algorithms of the indexer.
//
// Keys diffs two flat key sets (tag membership, translation languages) and
// Trees diffs two documentation tree snapshots. Both are pure functions over
// their inputs: no caches, no scratch buffers shared across calls, so they are
// safe under any future parallelization.
//
// Only transitions are reported. A key or node id present on both sides is
// never part of a diff result, which is what lets the entity reconcilers
// adjust counters exactly once per logical transition.
package diff
