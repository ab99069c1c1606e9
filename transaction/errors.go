package transaction

import "errors"

// ErrNotPresent is returned by AddDependency when either id does not
// refer to a node created by CreateID.
var ErrNotPresent = errors.New("transaction: id not present")

// ErrCausesCycle is returned by AddDependency when linking a depends-on-b
// would make the dependency relation cyclic.
var ErrCausesCycle = errors.New("transaction: dependency would cause a cycle")
