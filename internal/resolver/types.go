package resolver

import (
	"fmt"
	"strings"

	lisav1alpha1 "github.com/lisa-platform/lisa/api/v1alpha1"
	"github.com/lisa-platform/lisa/internal/schema"
)

// Input is the controller-normalized view the resolver operates on: one
// environment and the platforms in its namespace.
type Input struct {
	Environment lisav1alpha1.TestEnvironment
	Platforms   []lisav1alpha1.Platform
}

// Plan is the output of the resolver.
type Plan struct {
	// Selected is nil when no platform can host the environment.
	Selected    *Selection
	Diagnostics Diagnostics
}

// Selection is the chosen platform and the smallest environment to request
// from it.
type Selection struct {
	PlatformName    string
	PlatformVersion string
	MinCapability   schema.EnvironmentSpace
}

// Diagnostics captures human-readable information about resolution.
//
// This is useful for status/messages/events, and for logging.
type Diagnostics struct {
	Rejected []RejectedPlatform
}

type RejectedPlatform struct {
	PlatformName string
	Reasons      []string
}

// Err returns ErrNoCompatiblePlatform, with the rejections, when nothing was
// selected.
func (p Plan) Err() error {
	if p.Selected != nil {
		return nil
	}
	if len(p.Diagnostics.Rejected) == 0 {
		return fmt.Errorf("%w: no platforms available", ErrNoCompatiblePlatform)
	}
	parts := make([]string, 0, len(p.Diagnostics.Rejected))
	for _, r := range p.Diagnostics.Rejected {
		parts = append(parts, fmt.Sprintf("%s: %s", r.PlatformName, strings.Join(r.Reasons, ", ")))
	}
	return fmt.Errorf("%w: %s", ErrNoCompatiblePlatform, strings.Join(parts, "; "))
}
