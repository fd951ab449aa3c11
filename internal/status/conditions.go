// Package status renders resolved component state as v1alpha1 objects, the
// shape served over HTTP and printed by `forge list -o yaml`.
package status

import (
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/anvil-platform/forge/api/v1alpha1"
	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/resolver"
)

// Now stamps LastTransitionTime on new conditions. Tests replace it.
var Now = func() metav1.Time { return metav1.NewTime(time.Now()) }

func setEnabledCondition(obj *v1alpha1.Component, st *resolver.State) {
	condition := metav1.Condition{
		Type:               v1alpha1.ConditionEnabled,
		Status:             metav1.ConditionTrue,
		Reason:             v1alpha1.ReasonResolved,
		Message:            enabledMessage(len(st.Required())),
		LastTransitionTime: Now(),
	}
	if !st.Enabled {
		condition.Status = metav1.ConditionFalse
		condition.Reason = v1alpha1.ReasonDisabled
		condition.Message = st.Reason
	}
	meta.SetStatusCondition(&obj.Status.Conditions, condition)
}

func enabledMessage(requiredCount int) string {
	if requiredCount == 0 {
		return "No providers required"
	}
	return fmt.Sprintf("%d provider(s) in closure", requiredCount)
}

// IsEnabled reports the Enabled condition of a rendered component.
func IsEnabled(obj *v1alpha1.Component) bool {
	return meta.IsStatusConditionTrue(obj.Status.Conditions, v1alpha1.ConditionEnabled)
}

// Component renders c with its state under res.
func Component(res *resolver.Resolution, c *model.Component, st *resolver.State) v1alpha1.Component {
	obj := v1alpha1.Component{
		TypeMeta:   v1alpha1.TypeMetaFor(v1alpha1.KindComponent),
		ObjectMeta: metav1.ObjectMeta{Name: c.ID},
		Spec: v1alpha1.ComponentSpec{
			Kind:        kindOf(c.Kind),
			Description: c.Description,
			Version:     c.Version,
			Requires:    c.Requires,
			Provides:    c.Provides,
			Subpaths:    c.Subpaths,
		},
		Status: v1alpha1.ComponentStatus{Target: res.Target().ID},
	}
	if st.Enabled {
		obj.Status.Required = st.Required()
	}
	setEnabledCondition(&obj, st)
	return obj
}

// List renders every component of res in declaration order.
func List(res *resolver.Resolution) *v1alpha1.ComponentList {
	list := &v1alpha1.ComponentList{
		TypeMeta: metav1.TypeMeta{APIVersion: v1alpha1.GroupVersion, Kind: v1alpha1.KindComponent + "List"},
	}
	for c, st := range res.All() {
		list.Items = append(list.Items, Component(res, c, st))
	}
	return list
}

func kindOf(k model.Kind) v1alpha1.ComponentKind {
	if k == model.Executable {
		return v1alpha1.ComponentKindExecutable
	}
	return v1alpha1.ComponentKindLibrary
}
