package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lisa-platform/lisa/internal/schema"
)

// Platform declares what a test platform can provision.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=plat
// +kubebuilder:printcolumn:name="Type",type=string,JSONPath=`.spec.type`
// +kubebuilder:printcolumn:name="Version",type=string,JSONPath=`.spec.version`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type Platform struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PlatformSpec   `json:"spec"`
	Status PlatformStatus `json:"status,omitempty"`
}

type PlatformSpec struct {
	// Type names the platform implementation, e.g. "ready" or "azure".
	Type string `json:"type"`
	// Version is a semantic version used by TestEnvironment.spec.platformVersion.
	// +optional
	Version string `json:"version,omitempty"`
	// Capability is the largest environment the platform can provide.
	Capability schema.EnvironmentSpace `json:"capability"`
	// ReserveEnvironment keeps provisioned environments after a run.
	// +optional
	ReserveEnvironment bool `json:"reserveEnvironment,omitempty"`
}

type PlatformStatus struct {
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Phase              string             `json:"phase,omitempty"`
	Message            string             `json:"message,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

// PlatformList contains a list of Platform
// +kubebuilder:object:root=true
type PlatformList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Platform `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Platform{}, &PlatformList{})
}
