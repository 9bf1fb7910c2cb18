package resolver

import (
	"context"
	"fmt"
	"sort"

	lisav1alpha1 "github.com/lisa-platform/lisa/api/v1alpha1"
	"github.com/lisa-platform/lisa/internal/semver"
)

// DefaultResolver is the default implementation wired into the controller.
type DefaultResolver struct{}

type candidate struct {
	platform *lisav1alpha1.Platform
	version  semver.Version
}

func NewDefault() *DefaultResolver {
	return &DefaultResolver{}
}

// Resolve filters the platforms down to those that can host the environment
// and selects one deterministically: the highest version wins, ties break by
// platform name. Platforms without a parseable version sort last.
func (r *DefaultResolver) Resolve(ctx context.Context, in Input) (Plan, error) {
	env := in.Environment
	constraint, err := semver.ParseConstraint(env.Spec.PlatformVersion)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidConstraint, err)
	}

	plan := Plan{}
	candidates := make([]candidate, 0, len(in.Platforms))
	for i := range in.Platforms {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		p := &in.Platforms[i]

		if ref := env.Spec.PlatformRef; ref != nil && ref.Name != p.Name {
			addRejected(&plan.Diagnostics, p.Name, fmt.Sprintf("environment is pinned to platform %q", ref.Name))
			continue
		}
		if p.Status.Phase == lisav1alpha1.PlatformPhaseInvalid {
			addRejected(&plan.Diagnostics, p.Name, "platform capability is invalid")
			continue
		}

		var version semver.Version
		if p.Spec.Version != "" {
			version, err = semver.ParseVersion(p.Spec.Version)
			if err != nil && constraint.String() != "*" {
				addRejected(&plan.Diagnostics, p.Name, fmt.Sprintf("version %q is not a semantic version", p.Spec.Version))
				continue
			}
		}
		if !semver.Satisfies(version, constraint) {
			addRejected(&plan.Diagnostics, p.Name, fmt.Sprintf("version %q doesn't satisfy %q", p.Spec.Version, constraint))
			continue
		}

		result := env.Spec.Requirement.Check(p.Spec.Capability)
		if !result.Result() {
			addRejected(&plan.Diagnostics, p.Name, result.Reasons()...)
			continue
		}
		candidates = append(candidates, candidate{platform: p, version: version})
	}

	if len(candidates) == 0 {
		return plan, nil
	}

	selected := selectPlatformDeterministic(candidates)
	minCapability, err := env.Spec.Requirement.GenerateMinCapability(selected.platform.Spec.Capability)
	if err != nil {
		return plan, fmt.Errorf("platform %s: %w", selected.platform.Name, err)
	}
	minCapability.Name = env.Name
	plan.Selected = &Selection{
		PlatformName:    selected.platform.Name,
		PlatformVersion: selected.platform.Spec.Version,
		MinCapability:   minCapability,
	}
	return plan, nil
}

func addRejected(diag *Diagnostics, platformName string, reasons ...string) {
	diag.Rejected = append(diag.Rejected, RejectedPlatform{
		PlatformName: platformName,
		Reasons:      reasons,
	})
}

func selectPlatformDeterministic(candidates []candidate) candidate {
	// Deterministic ordering:
	// 1) Higher version wins
	// 2) Tie-break: platform name (ascending)
	sort.Slice(candidates, func(i, j int) bool {
		cmp := semver.Compare(candidates[i].version, candidates[j].version)
		if cmp != 0 {
			return cmp > 0
		}
		return candidates[i].platform.Name < candidates[j].platform.Name
	})
	return candidates[0]
}
