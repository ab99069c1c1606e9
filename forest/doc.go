// Package forest implements a generic intrusive tree over a generational
// arena. Every node owns one value plus parent/sibling/child link fields;
// handles are (slot, generation) pairs that reject stale lookups after a
// slot is freed and reused.
//
// A Forest is not safe for concurrent use; callers serialize access the
// same way the scene graph and shell state serialize access to their own
// state (see the package docs for those packages).
package forest
