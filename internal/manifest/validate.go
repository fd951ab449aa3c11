package manifest

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/validation/field"

	forgev1alpha1 "github.com/anvil-platform/forge/api/v1alpha1"
	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/semver"
)

// ValidateComponent checks a component manifest before conversion.
func ValidateComponent(m *forgev1alpha1.Component) field.ErrorList {
	var errs field.ErrorList
	errs = append(errs, validateTypeMeta(m.APIVersion, m.Kind, forgev1alpha1.KindComponent)...)

	if m.Name == "" {
		errs = append(errs, field.Required(field.NewPath("metadata", "name"), "component id"))
	}

	spec := field.NewPath("spec")
	if _, err := model.ParseKind(string(m.Spec.Kind)); err != nil {
		errs = append(errs, field.NotSupported(spec.Child("kind"), m.Spec.Kind,
			[]string{string(forgev1alpha1.ComponentKindLibrary), string(forgev1alpha1.ComponentKindExecutable)}))
	}
	if m.Spec.Version != "" {
		if _, err := semver.ParseVersion(m.Spec.Version); err != nil {
			errs = append(errs, field.Invalid(spec.Child("version"), m.Spec.Version, err.Error()))
		}
	}
	errs = append(errs, validateInterfaces(spec.Child("requires"), m.Spec.Requires)...)
	errs = append(errs, validateInterfaces(spec.Child("provides"), m.Spec.Provides)...)
	return errs
}

// ValidateTarget checks a target manifest before conversion. Routing values
// are not checked against known components here; see resolver.Registry.Validate.
func ValidateTarget(m *forgev1alpha1.Target) field.ErrorList {
	var errs field.ErrorList
	errs = append(errs, validateTypeMeta(m.APIVersion, m.Kind, forgev1alpha1.KindTarget)...)

	if m.Name == "" {
		errs = append(errs, field.Required(field.NewPath("metadata", "name"), "target id"))
	}

	routing := field.NewPath("spec", "routing")
	for _, iface := range sortedKeys(m.Spec.Routing) {
		if iface == "" {
			errs = append(errs, field.Invalid(routing, iface, "interface must not be empty"))
		}
		if m.Spec.Routing[iface] == "" {
			errs = append(errs, field.Required(routing.Key(iface), "component id"))
		}
	}

	constraints := field.NewPath("spec", "constraints")
	for _, iface := range sortedKeys(m.Spec.Constraints) {
		if _, err := semver.ParseConstraint(m.Spec.Constraints[iface]); err != nil {
			errs = append(errs, field.Invalid(constraints.Key(iface), m.Spec.Constraints[iface], err.Error()))
		}
	}
	return errs
}

func validateTypeMeta(apiVersion, kind, wantKind string) field.ErrorList {
	var errs field.ErrorList
	if apiVersion != forgev1alpha1.GroupVersion {
		errs = append(errs, field.NotSupported(field.NewPath("apiVersion"), apiVersion, []string{forgev1alpha1.GroupVersion}))
	}
	if kind != wantKind {
		errs = append(errs, field.NotSupported(field.NewPath("kind"), kind, []string{wantKind}))
	}
	return errs
}

func validateInterfaces(path *field.Path, ifaces []string) field.ErrorList {
	var errs field.ErrorList
	seen := map[string]bool{}
	for i, iface := range ifaces {
		if iface == "" {
			errs = append(errs, field.Required(path.Index(i), "interface id"))
			continue
		}
		if seen[iface] {
			errs = append(errs, field.Duplicate(path.Index(i), iface))
		}
		seen[iface] = true
	}
	return errs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
