package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Target declares a build configuration: which component satisfies each
// interface, and where outputs go.
//
// metadata.name is the target id.
type Target struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec TargetSpec `json:"spec"`
}

type TargetSpec struct {
	Routing map[string]string `json:"routing,omitempty"`
	// Constraints are semantic version constraints on routed providers, keyed by interface.
	Constraints map[string]string `json:"constraints,omitempty"`
	// BuildDir defaults to <build root>/<target id>.
	BuildDir string            `json:"buildDir,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
}
