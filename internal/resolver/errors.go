package resolver

import "errors"

var (
	// ErrInvalidConstraint indicates TestEnvironment.spec.platformVersion is not
	// a valid semver constraint.
	ErrInvalidConstraint = errors.New("invalid platform version constraint")

	// ErrNoCompatiblePlatform is returned by Plan.Err when no platform matched.
	ErrNoCompatiblePlatform = errors.New("no compatible platform")
)
