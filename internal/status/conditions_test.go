package status

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/forge/api/v1alpha1"
	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/resolver"
)

func TestList(t *testing.T) {
	fixed := metav1.NewTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	Now = func() metav1.Time { return fixed }
	t.Cleanup(func() { Now = func() metav1.Time { return metav1.NewTime(time.Now()) } })

	reg, err := resolver.New(
		&model.Component{ID: "liblog", Kind: model.Library, Provides: []string{"log"}},
		&model.Component{ID: "libnet", Kind: model.Library, Requires: []string{"log"}, Provides: []string{"net"}},
		&model.Component{ID: "app.main", Kind: model.Executable, Requires: []string{"gfx"}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := log.IntoContext(context.Background(), logr.Discard())
	res, err := reg.Resolve(ctx, &model.Target{ID: "host", Routing: map[string]string{"log": "liblog", "net": "libnet"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	list := List(res)
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}

	libnet := list.Items[1]
	if !IsEnabled(&libnet) {
		t.Fatalf("expected libnet enabled, got %+v", libnet.Status.Conditions)
	}
	if got := libnet.Status.Required; len(got) != 1 || got[0] != "liblog" {
		t.Fatalf("expected libnet closure [liblog], got %v", got)
	}
	if libnet.Status.Target != "host" {
		t.Fatalf("expected target host, got %q", libnet.Status.Target)
	}

	app := list.Items[2]
	if IsEnabled(&app) {
		t.Fatalf("expected app.main disabled")
	}
	cond := meta.FindStatusCondition(app.Status.Conditions, v1alpha1.ConditionEnabled)
	if cond == nil {
		t.Fatalf("expected Enabled condition")
	}
	if cond.Reason != v1alpha1.ReasonDisabled || cond.Message != `requires unrouted interface "gfx"` {
		t.Fatalf("unexpected condition %+v", cond)
	}
	if !cond.LastTransitionTime.Equal(&fixed) {
		t.Fatalf("expected fixed transition time, got %v", cond.LastTransitionTime)
	}
	if app.Spec.Kind != v1alpha1.ComponentKindExecutable {
		t.Fatalf("expected exe kind, got %q", app.Spec.Kind)
	}
	if len(app.Status.Required) != 0 {
		t.Fatalf("expected no closure for disabled component, got %v", app.Status.Required)
	}
}

func TestEnabledMessage(t *testing.T) {
	if got := enabledMessage(0); got != "No providers required" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := enabledMessage(3); got != "3 provider(s) in closure" {
		t.Fatalf("unexpected message %q", got)
	}
}
