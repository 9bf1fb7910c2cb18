package searchspace

import "errors"

var (
	// ErrNotMeetRequirement indicates a capability cannot satisfy a requirement.
	// Checks never return it; it is produced when a caller needs a concrete
	// value (min capability) from a pair that does not match.
	ErrNotMeetRequirement = errors.New("capability doesn't meet requirement")

	// ErrConfiguration indicates a requirement/capability pair that is declared
	// in a way that can never be resolved, e.g. a mandatory count missing on
	// both sides.
	ErrConfiguration = errors.New("invalid configuration")
)
