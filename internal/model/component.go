package model

import "fmt"

// Kind is the closed set of buildable unit kinds.
type Kind int

const (
	// AnyKind is only meaningful as a lookup filter; no component carries it.
	AnyKind Kind = iota
	Library
	Executable
)

func (k Kind) String() string {
	switch k {
	case AnyKind:
		return "any"
	case Library:
		return "lib"
	case Executable:
		return "exe"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Matches reports whether a component of kind k satisfies the filter want.
func (k Kind) Matches(want Kind) bool {
	return want == AnyKind || k == want
}

// ParseKind accepts the manifest spellings of a kind.
func ParseKind(raw string) (Kind, error) {
	switch raw {
	case "lib", "library":
		return Library, nil
	case "exe", "executable":
		return Executable, nil
	default:
		return AnyKind, fmt.Errorf("unknown component kind %q", raw)
	}
}

// Component is an immutable description of a buildable unit.
//
// Requires and Provides keep declaration order; resolution reasons depend on it.
type Component struct {
	ID          string
	Kind        Kind
	Description string
	// Version is optional; it only matters when a target constrains a route.
	Version  string
	Requires []string
	Provides []string
	// Subpaths maps a logical area such as "res" to a filesystem path.
	Subpaths map[string]string
	// Dir is the directory the component was declared in.
	Dir string
}

// Subpath returns the path registered for area, or "" if none.
func (c *Component) Subpath(area string) string {
	if c == nil || c.Subpaths == nil {
		return ""
	}
	return c.Subpaths[area]
}

// ProvidesInterface reports whether iface is among the declared provisions.
func (c *Component) ProvidesInterface(iface string) bool {
	for _, p := range c.Provides {
		if p == iface {
			return true
		}
	}
	return false
}

func (c *Component) IsExecutable() bool { return c.Kind == Executable }
