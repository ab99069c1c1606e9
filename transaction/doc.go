// Package transaction implements the dependency tracker: a directed
// acyclic graph of pending units of work whose success or failure
// propagates across declared dependents so that multi-surface updates
// commit atomically or fail together.
//
// A Tracker is not safe for concurrent use; it is owned by the single
// compositor event loop thread, consistent with the rest of the core (see
// SPEC_FULL.md §5).
package transaction
