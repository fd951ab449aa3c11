package model

// Target is a named build configuration.
//
// A Target owns no components. Resolution reads it and never mutates it.
type Target struct {
	ID string
	// Routing maps an interface to the id of the component chosen to satisfy it.
	Routing map[string]string
	// Constraints maps an interface to a semantic version constraint that the
	// routed provider must satisfy.
	Constraints map[string]string
	BuildDir    string
	Props       map[string]string
}

// Route returns the component id routed for iface.
func (t *Target) Route(iface string) (string, bool) {
	if t == nil || t.Routing == nil {
		return "", false
	}
	id, ok := t.Routing[iface]
	return id, ok
}

// IsChosen reports whether componentID is the routed provider of iface.
func (t *Target) IsChosen(iface, componentID string) bool {
	id, ok := t.Route(iface)
	return ok && id == componentID
}

// Constraint returns the version constraint for iface, if any.
func (t *Target) Constraint(iface string) (string, bool) {
	if t == nil || t.Constraints == nil {
		return "", false
	}
	c, ok := t.Constraints[iface]
	return c, ok && c != ""
}
