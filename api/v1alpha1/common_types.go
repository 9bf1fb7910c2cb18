package v1alpha1

type ObjectRef struct {
	Name string `json:"name"`
}

// Platform phases.
const (
	PlatformPhaseReady   = "Ready"
	PlatformPhaseInvalid = "Invalid"
)

// TestEnvironment phases.
const (
	EnvironmentPhaseMatched   = "Matched"
	EnvironmentPhaseUnmatched = "Unmatched"
	EnvironmentPhaseError     = "Error"
)

// EnvironmentBinding phases.
const (
	BindingPhaseBound = "Bound"
)

// PlatformTypeReady is a platform whose nodes already exist; it never
// provisions anything.
const PlatformTypeReady = "ready"
