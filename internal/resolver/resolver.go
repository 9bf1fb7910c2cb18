package resolver

import "context"

// Resolver chooses the Platform that should host a TestEnvironment.
type Resolver interface {
	Resolve(ctx context.Context, in Input) (Plan, error)
}
