package fingerprint

import (
	"testing"

	"github.com/tobyh/campussync/internal/domain"
)

func mustUnit(t *testing.T, code, name, status string) domain.Unit {
	t.Helper()
	u, err := domain.NewUnit("u1", code, name, status, "")
	if err != nil {
		t.Fatalf("failed to build unit: %v", err)
	}
	return u
}

func TestComputeDeterministic(t *testing.T) {
	a := mustUnit(t, "UNIT001", "Intro", "Active")
	b := mustUnit(t, "UNIT001", "Intro", "Active")

	fa, err := Compute(a)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	fb, err := Compute(b)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if fa != fb {
		t.Fatalf("identical content must hash identically: %q vs %q", fa, fb)
	}
}

func TestComputeDetectsContentChange(t *testing.T) {
	active := mustUnit(t, "UNIT001", "Intro", "Active")
	inactive := mustUnit(t, "UNIT001", "Intro", "Inactive")

	fa, _ := Compute(active)
	fb, _ := Compute(inactive)
	if fa == fb {
		t.Fatalf("changed content must change the fingerprint")
	}
}

func TestClassify(t *testing.T) {
	if got := Classify("", "abc"); got != New {
		t.Fatalf("no stored fingerprint should classify as New, got %v", got)
	}
	if got := Classify("abc", "abc"); got != Unchanged {
		t.Fatalf("matching fingerprints should classify as Unchanged, got %v", got)
	}
	if got := Classify("abc", "def"); got != Updated {
		t.Fatalf("differing fingerprints should classify as Updated, got %v", got)
	}
}
