package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lisa-platform/lisa/internal/schema"
)

// EnvironmentBinding records the Platform chosen for a TestEnvironment and the
// minimal capability to provision on it.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=envbind
// +kubebuilder:printcolumn:name="Environment",type=string,JSONPath=`.spec.environmentRef.name`
// +kubebuilder:printcolumn:name="Platform",type=string,JSONPath=`.spec.platformRef.name`
// +kubebuilder:printcolumn:name="Version",type=string,JSONPath=`.spec.platformVersion`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type EnvironmentBinding struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   EnvironmentBindingSpec   `json:"spec"`
	Status EnvironmentBindingStatus `json:"status,omitempty"`
}

type EnvironmentBindingSpec struct {
	EnvironmentRef  ObjectRef               `json:"environmentRef"`
	PlatformRef     ObjectRef               `json:"platformRef"`
	PlatformVersion string                  `json:"platformVersion,omitempty"`
	MinCapability   schema.EnvironmentSpace `json:"minCapability"`
}

type EnvironmentBindingStatus struct {
	Phase      string             `json:"phase,omitempty"`
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// EnvironmentBindingList contains a list of EnvironmentBinding
// +kubebuilder:object:root=true
type EnvironmentBindingList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []EnvironmentBinding `json:"items"`
}

func init() {
	SchemeBuilder.Register(&EnvironmentBinding{}, &EnvironmentBindingList{})
}
