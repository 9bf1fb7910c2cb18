package testselector

import "errors"

var (
	// ErrForceConflict is returned when a case is both force-included and
	// force-excluded.
	ErrForceConflict = errors.New("force include and force exclude conflict")

	// ErrInvalidCriteria indicates a criteria pattern that doesn't compile.
	ErrInvalidCriteria = errors.New("invalid criteria")
)
