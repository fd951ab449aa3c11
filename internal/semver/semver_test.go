package semver

import (
	"errors"
	"strings"
	"testing"
)

func mustVersion(t *testing.T, raw string) Version {
	t.Helper()
	v, err := ParseVersion(raw)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", raw, err)
	}
	return v
}

func TestSatisfies(t *testing.T) {
	c, err := ParseConstraint(" ^1.2.0 ")
	if err != nil {
		t.Fatalf("ParseConstraint: %v", err)
	}
	if c.String() != "^1.2.0" {
		t.Fatalf("expected trimmed constraint, got %q", c.String())
	}

	if !Satisfies(mustVersion(t, "1.2.0"), c) {
		t.Fatalf("expected 1.2.0 to satisfy ^1.2.0")
	}
	if !Satisfies(mustVersion(t, "1.9.9"), c) {
		t.Fatalf("expected 1.9.9 to satisfy ^1.2.0")
	}
	if Satisfies(mustVersion(t, "2.0.0"), c) {
		t.Fatalf("expected 2.0.0 to NOT satisfy ^1.2.0")
	}
	if Satisfies(Version{}, c) {
		t.Fatalf("expected zero version to satisfy nothing")
	}
}

func TestCheck(t *testing.T) {
	if err := Check("1.4.0", ">=1.0.0 <2.0.0"); err != nil {
		t.Fatalf("expected 1.4.0 to pass, got %v", err)
	}

	err := Check("2.1.0", "~1.4")
	if err == nil || !strings.Contains(err.Error(), "does not satisfy") {
		t.Fatalf("expected unsatisfied error, got %v", err)
	}

	if err := Check("", "^1"); !errors.Is(err, ErrNoVersion) {
		t.Fatalf("expected ErrNoVersion, got %v", err)
	}

	if err := Check("1.0.0", "not a constraint"); err == nil || !strings.Contains(err.Error(), "parse constraint") {
		t.Fatalf("expected constraint parse error, got %v", err)
	}

	if err := Check("one", "^1"); err == nil || !strings.Contains(err.Error(), "parse version") {
		t.Fatalf("expected version parse error, got %v", err)
	}
}
