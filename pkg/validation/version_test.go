package validation

import (
	"encoding/json"
	"testing"
)

func TestVersionSet_Operations(t *testing.T) {
	a := NewVersionSet(3, 1, 2, 2)
	b := NewVersionSet(2, 3, 4)

	if got := a.String(); got != "{1,2,3}" {
		t.Errorf("String() = %q", got)
	}
	if got := a.Intersect(b); !got.Equal(NewVersionSet(2, 3)) {
		t.Errorf("Intersect = %s", got)
	}
	if got := a.Union(b); !got.Equal(VersionsBetween(1, 4)) {
		t.Errorf("Union = %s", got)
	}
	if got := a.Difference(b); !got.Equal(NewVersionSet(1)) {
		t.Errorf("Difference = %s", got)
	}
	if !NewVersionSet(2).SubsetOf(a) || b.SubsetOf(a) {
		t.Error("SubsetOf mismatch")
	}
	if !VersionsBetween(3, 2).Empty() {
		t.Error("inverted range should be empty")
	}
}

func TestVersionSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewVersionSet(4, 2))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[2,4]" {
		t.Errorf("Marshal = %s", data)
	}
	empty, _ := json.Marshal(VersionSet{})
	if string(empty) != "[]" {
		t.Errorf("Marshal(empty) = %s", empty)
	}

	var s VersionSet
	if err := json.Unmarshal([]byte("[3,1,3]"), &s); err != nil {
		t.Fatal(err)
	}
	if !s.Equal(NewVersionSet(1, 3)) {
		t.Errorf("Unmarshal = %s", s)
	}
}

func TestVersionRange_Validate(t *testing.T) {
	if _, err := NewVersionRange(2, 1); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := NewVersionRange(-1, 3); err == nil {
		t.Error("expected error for negative minimum")
	}
	r, err := NewVersionRange(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Contains(4) || r.Contains(5) {
		t.Error("Contains mismatch")
	}
}

func TestVersionKey(t *testing.T) {
	if GlobalKey.String() != "GLOBAL" {
		t.Errorf("GlobalKey.String() = %q", GlobalKey.String())
	}
	if v, ok := KeyOf(3).Version(); !ok || v != 3 {
		t.Errorf("KeyOf(3).Version() = %d, %v", v, ok)
	}
	if _, ok := GlobalKey.Version(); ok {
		t.Error("GlobalKey has no version")
	}
}
