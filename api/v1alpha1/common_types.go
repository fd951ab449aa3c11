package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	Group   = "forge.anvil-platform.io"
	Version = "v1alpha1"

	KindComponent = "Component"
	KindTarget    = "Target"
)

// GroupVersion is the apiVersion every manifest in this package declares.
var GroupVersion = Group + "/" + Version

// ComponentKind is the manifest spelling of model.Kind.
type ComponentKind string

const (
	ComponentKindLibrary    ComponentKind = "lib"
	ComponentKindExecutable ComponentKind = "exe"
)

const (
	// ConditionEnabled is True when a component participates in a target build.
	ConditionEnabled = "Enabled"

	ReasonResolved = "Resolved"
	ReasonDisabled = "Disabled"
)

// TypeMetaFor returns the TypeMeta a manifest of the given kind must carry.
func TypeMetaFor(kind string) metav1.TypeMeta {
	return metav1.TypeMeta{APIVersion: GroupVersion, Kind: kind}
}
