// Package shell implements Shell State (SPEC_FULL.md §4.4): the toplevel
// and popup lifecycle records, the initial-configure handshake, the
// acked-state-becomes-current rule, and the sync-subsurface commit
// propagation rule. It owns every toplevel record exclusively; the Scene
// only observes the surface-identity-to-toplevel relation through the
// surface node it already holds.
//
// Every configure the shell issues is bound to a transaction.ID so that
// acking a configure serial finishes the corresponding transaction node,
// composing with whatever dependents the compositor has chained onto it
// (SPEC_FULL.md §9 Open Question 4).
package shell
