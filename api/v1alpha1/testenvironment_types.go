package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lisa-platform/lisa/internal/schema"
)

// TestEnvironment is an environment requirement waiting to be matched to a
// Platform.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=testenv
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Platform",type=string,JSONPath=`.status.matchedPlatform`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type TestEnvironment struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   TestEnvironmentSpec   `json:"spec"`
	Status TestEnvironmentStatus `json:"status,omitempty"`
}

type TestEnvironmentSpec struct {
	Requirement schema.EnvironmentSpace `json:"requirement"`
	// PlatformRef pins the environment to one Platform.
	// +optional
	PlatformRef *ObjectRef `json:"platformRef,omitempty"`
	// PlatformVersion is a semver constraint on Platform.spec.version.
	// +optional
	PlatformVersion string `json:"platformVersion,omitempty"`
}

type TestEnvironmentStatus struct {
	ObservedGeneration int64                    `json:"observedGeneration,omitempty"`
	Phase              string                   `json:"phase,omitempty"`
	Message            string                   `json:"message,omitempty"`
	MatchedPlatform    string                   `json:"matchedPlatform,omitempty"`
	MinCapability      *schema.EnvironmentSpace `json:"minCapability,omitempty"`
	Reasons            []string                 `json:"reasons,omitempty"`
	LastMatchedTime    *metav1.Time             `json:"lastMatchedTime,omitempty"`
	Conditions         []metav1.Condition       `json:"conditions,omitempty"`
}

// TestEnvironmentList contains a list of TestEnvironment
// +kubebuilder:object:root=true
type TestEnvironmentList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []TestEnvironment `json:"items"`
}

func init() {
	SchemeBuilder.Register(&TestEnvironment{}, &TestEnvironmentList{})
}
