package schema

import "errors"

// ErrNodeCountMismatch is returned when requirement and capability node lists
// can be neither paired by index nor share a single capability node.
var ErrNodeCountMismatch = errors.New("node count mismatch")
