package semver

import "testing"

func TestSatisfies(t *testing.T) {
	c := MustParseConstraint("^1.2.0")

	if !Satisfies(MustParseVersion("1.2.0"), c) {
		t.Fatalf("expected 1.2.0 to satisfy ^1.2.0")
	}
	if !Satisfies(MustParseVersion("1.9.9"), c) {
		t.Fatalf("expected 1.9.9 to satisfy ^1.2.0")
	}
	if Satisfies(MustParseVersion("2.0.0"), c) {
		t.Fatalf("expected 2.0.0 to NOT satisfy ^1.2.0")
	}
	if Satisfies(Version{}, c) {
		t.Fatalf("expected an unparsed version to NOT satisfy ^1.2.0")
	}
}

func TestEmptyConstraintAcceptsAnything(t *testing.T) {
	c, err := ParseConstraint("  ")
	if err != nil {
		t.Fatalf("ParseConstraint: %v", err)
	}
	if c.String() != "*" {
		t.Fatalf("expected *, got %q", c.String())
	}
	if !Satisfies(MustParseVersion("0.0.1"), c) || !Satisfies(Version{}, c) {
		t.Fatalf("expected empty constraint to accept every version")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := ParseVersion("not-a-version"); err == nil {
		t.Fatalf("expected version parse error")
	}
	if _, err := ParseConstraint("abc"); err == nil {
		t.Fatalf("expected constraint parse error")
	}
}

func TestCompare(t *testing.T) {
	if Compare(MustParseVersion("1.10.0"), MustParseVersion("1.9.0")) != 1 {
		t.Fatalf("expected 1.10.0 > 1.9.0")
	}
	if Compare(MustParseVersion("v2"), MustParseVersion("2.0.0")) != 0 {
		t.Fatalf("expected v2 == 2.0.0")
	}
	if Compare(Version{}, MustParseVersion("0.0.0")) != -1 {
		t.Fatalf("expected zero version to sort first")
	}
	if got := MustParseVersion("v1.2").String(); got != "1.2.0" {
		t.Fatalf("expected 1.2.0, got %q", got)
	}
}
