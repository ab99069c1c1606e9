package forest

import "errors"

// ErrNotPresent is returned when an operation is given an index that does
// not resolve to a live node, either because the slot was never allocated
// or because the generation recorded in the index is stale.
var ErrNotPresent = errors.New("forest: index not present")

// ErrCycle is returned by AddChild when linking child beneath parent would
// make some node its own ancestor, and also when child already lies
// anywhere in the subtree rooted at parent (including as a direct child).
var ErrCycle = errors.New("forest: operation would create a cycle")
