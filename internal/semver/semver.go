package semver

import (
	"errors"
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// ErrNoVersion is returned by Check when the provider declares no version.
var ErrNoVersion = errors.New("no version declared")

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3.
type Version struct {
	v *mm.Version
}

// Constraint is a semantic version constraint.
//
// Examples:
// - ">=1.2.0 <2.0.0"
// - "^1.0.0"
// - "~1.4"
type Constraint struct {
	c   *mm.Constraints
	raw string
}

func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func ParseConstraint(raw string) (Constraint, error) {
	trimmed := strings.TrimSpace(raw)
	c, err := mm.NewConstraint(trimmed)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{c: c, raw: trimmed}, nil
}

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

func (c Constraint) String() string { return c.raw }

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Check validates rawVersion against rawConstraint. The returned error is
// suitable for a human-readable disablement reason.
func Check(rawVersion, rawConstraint string) error {
	c, err := ParseConstraint(rawConstraint)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawVersion) == "" {
		return ErrNoVersion
	}
	v, err := ParseVersion(rawVersion)
	if err != nil {
		return err
	}
	if !Satisfies(v, c) {
		return fmt.Errorf("version %s does not satisfy %q", v, c)
	}
	return nil
}
