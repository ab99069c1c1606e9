// Package scene implements the typed scene graph: a reconciled model of
// surface nodes, subsurface trees, branch (grouping) nodes, and output
// nodes, composed from four independent forest.Forest instantiations plus
// the lookup tables describing how client-visible identities map onto
// scene indices.
//
// Per SPEC_FULL.md §9 Open Question 3, this package implements only the
// newer typed scene (Output/SurfaceTree/Surface/Branch); it does not
// reproduce the older generic NodeRelations-based scene representation
// found elsewhere in the grounding source.
//
// A Scene is not safe for concurrent use; it is owned by the single
// compositor event loop thread (SPEC_FULL.md §5).
package scene
