package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Component declares a buildable unit and its interface contracts.
//
// metadata.name is the component id.
type Component struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ComponentSpec   `json:"spec"`
	Status ComponentStatus `json:"status,omitempty"`
}

type ComponentSpec struct {
	Kind        ComponentKind `json:"kind"`
	Description string        `json:"description,omitempty"`
	Version     string        `json:"version,omitempty"`
	// Requires is ordered; the first unmet entry is reported when disabled.
	Requires []string `json:"requires,omitempty"`
	Provides []string `json:"provides,omitempty"`
	// Subpaths are relative to the manifest directory.
	Subpaths map[string]string `json:"subpaths,omitempty"`
}

// ComponentStatus is the resolved state of a component for one target.
type ComponentStatus struct {
	Target     string             `json:"target,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

type ComponentList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Component `json:"items"`
}
