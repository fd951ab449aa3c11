package resolver

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// Status tracks a component's progress through one resolution pass.
type Status int

const (
	Unvisited Status = iota
	InProgress
	Resolved
)

func (s Status) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case InProgress:
		return "in-progress"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// State is the resolved verdict for one component under one target.
//
// A State is immutable once its pass completes.
type State struct {
	Enabled bool
	// Reason is set only when Enabled is false.
	Reason   string
	required sets.Set[string]
}

// Required returns the sorted transitive closure of provider ids.
// It is empty for disabled components.
func (s *State) Required() []string {
	if s == nil || s.required == nil {
		return []string{}
	}
	return sets.List(s.required)
}

// Requires reports whether id is in the transitive requirement closure.
func (s *State) Requires(id string) bool {
	return s != nil && s.required.Has(id)
}

func enabled(required sets.Set[string]) State {
	return State{Enabled: true, required: required}
}

func disabled(reason string) State {
	return State{Reason: reason}
}
