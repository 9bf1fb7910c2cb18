package controllers

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	lisav1alpha1 "github.com/lisa-platform/lisa/api/v1alpha1"
	"github.com/lisa-platform/lisa/internal/resolver"
)

const (
	EnvironmentConditionPlatformsLoaded    = "PlatformsLoaded"
	EnvironmentConditionRequirementMatched = "RequirementMatched"

	PlatformConditionCapabilityValid = "CapabilityValid"

	BindingConditionReady = "Ready"
)

// maxStatusReasons bounds TestEnvironment.status.reasons.
const maxStatusReasons = 16

func setEnvironmentCondition(env *lisav1alpha1.TestEnvironment, condition metav1.Condition) {
	if env == nil {
		return
	}
	condition.ObservedGeneration = env.Generation
	meta.SetStatusCondition(&env.Status.Conditions, condition)
}

func setPlatformCondition(platform *lisav1alpha1.Platform, condition metav1.Condition) {
	if platform == nil {
		return
	}
	condition.ObservedGeneration = platform.Generation
	meta.SetStatusCondition(&platform.Status.Conditions, condition)
}

func setBindingCondition(binding *lisav1alpha1.EnvironmentBinding, condition metav1.Condition) {
	if binding == nil {
		return
	}
	condition.ObservedGeneration = binding.Generation
	meta.SetStatusCondition(&binding.Status.Conditions, condition)
}

func platformsLoadedMessage(count int) string {
	if count == 1 {
		return "1 platform found in namespace"
	}
	return fmt.Sprintf("%d platforms found in namespace", count)
}

func summarizeRejected(rejected []resolver.RejectedPlatform) string {
	// Keep this human-readable and bounded.
	if len(rejected) == 0 {
		return "No platforms available"
	}
	max := 4
	parts := make([]string, 0, min(len(rejected), max))
	for i := 0; i < len(rejected) && i < max; i++ {
		r := rejected[i]
		first := ""
		if len(r.Reasons) > 0 {
			first = r.Reasons[0]
		}
		if len(r.Reasons) > 1 {
			first = fmt.Sprintf("%s (+%d more)", first, len(r.Reasons)-1)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", r.PlatformName, first))
	}
	if len(rejected) > max {
		parts = append(parts, fmt.Sprintf("...and %d more", len(rejected)-max))
	}
	return "No compatible platform: " + strings.Join(parts, "; ")
}

// flattenReasons lists every rejection reason prefixed with its platform,
// truncated to maxStatusReasons entries.
func flattenReasons(rejected []resolver.RejectedPlatform) []string {
	var out []string
	for _, r := range rejected {
		for _, reason := range r.Reasons {
			if len(out) == maxStatusReasons {
				return out
			}
			out = append(out, r.PlatformName+": "+reason)
		}
	}
	return out
}
