package resolver

import (
	"errors"
	"fmt"

	"github.com/anvil-platform/forge/internal/model"
)

var (
	// ErrNotFound is wrapped by LookupError when no component has the requested id.
	ErrNotFound = errors.New("component not found")
	// ErrKindMismatch is wrapped by LookupError when the component exists but
	// has a different kind than the caller asked for.
	ErrKindMismatch = errors.New("component kind mismatch")
)

// LookupError signals misconfiguration: a reference to an unknown component
// or to a component of the wrong kind. It is never used for disablement.
type LookupError struct {
	ID   string
	Want model.Kind
	Got  model.Kind
	// Context says where the reference came from, e.g. `routing of "net"`.
	Context string
	Err     error
}

func (e *LookupError) Error() string {
	prefix := "lookup"
	if e.Context != "" {
		prefix = e.Context
	}
	if errors.Is(e.Err, ErrKindMismatch) {
		return fmt.Sprintf("%s: component %q is %s, expected %s", prefix, e.ID, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: component %q not found", prefix, e.ID)
}

func (e *LookupError) Unwrap() error { return e.Err }

func notFound(id, context string) error {
	return &LookupError{ID: id, Want: model.AnyKind, Context: context, Err: ErrNotFound}
}
