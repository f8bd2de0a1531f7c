package validation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Version is a watch face format revision.
type Version int

// VersionRange is the contiguous universe of versions a specification covers.
type VersionRange struct {
	Min Version `json:"min"`
	Max Version `json:"max"`
}

// NewVersionRange returns the range [min, max].
func NewVersionRange(min, max Version) (VersionRange, error) {
	r := VersionRange{Min: min, Max: max}
	if err := r.Validate(); err != nil {
		return VersionRange{}, err
	}
	return r, nil
}

// MustVersionRange is like NewVersionRange but panics on an invalid range.
func MustVersionRange(min, max Version) VersionRange {
	r, err := NewVersionRange(min, max)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate reports whether r is usable as a version universe.
func (r VersionRange) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("version range: minimum %d is negative", r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("version range: minimum %d exceeds maximum %d", r.Min, r.Max)
	}
	return nil
}

// Contains reports whether v lies inside r.
func (r VersionRange) Contains(v Version) bool {
	return v >= r.Min && v <= r.Max
}

// All returns every version of the range.
func (r VersionRange) All() VersionSet {
	return VersionsBetween(r.Min, r.Max)
}

func (r VersionRange) String() string {
	return fmt.Sprintf("[%d..%d]", r.Min, r.Max)
}

// VersionSet is an immutable, ordered set of versions.
// The zero value is the empty set.
type VersionSet struct {
	vs []Version
}

// NewVersionSet returns the set holding the given versions.
func NewVersionSet(versions ...Version) VersionSet {
	if len(versions) == 0 {
		return VersionSet{}
	}
	vs := slices.Clone(versions)
	slices.Sort(vs)
	return VersionSet{vs: slices.Compact(vs)}
}

// VersionsBetween returns every version in [min, max]; empty when min > max.
func VersionsBetween(min, max Version) VersionSet {
	if min > max {
		return VersionSet{}
	}
	vs := make([]Version, 0, int(max-min)+1)
	for v := min; v <= max; v++ {
		vs = append(vs, v)
	}
	return VersionSet{vs: vs}
}

// Len returns the number of versions in s.
func (s VersionSet) Len() int { return len(s.vs) }

// Empty reports whether s has no versions.
func (s VersionSet) Empty() bool { return len(s.vs) == 0 }

// Slice returns the versions in ascending order.
func (s VersionSet) Slice() []Version { return slices.Clone(s.vs) }

// Contains reports whether v is in s.
func (s VersionSet) Contains(v Version) bool {
	_, ok := slices.BinarySearch(s.vs, v)
	return ok
}

// Intersect returns the versions present in both sets.
func (s VersionSet) Intersect(o VersionSet) VersionSet {
	var out []Version
	for _, v := range s.vs {
		if o.Contains(v) {
			out = append(out, v)
		}
	}
	return VersionSet{vs: out}
}

// Union returns the versions present in either set.
func (s VersionSet) Union(o VersionSet) VersionSet {
	if s.Empty() {
		return o
	}
	if o.Empty() {
		return s
	}
	return NewVersionSet(append(slices.Clone(s.vs), o.vs...)...)
}

// Difference returns the versions of s that are not in o.
func (s VersionSet) Difference(o VersionSet) VersionSet {
	var out []Version
	for _, v := range s.vs {
		if !o.Contains(v) {
			out = append(out, v)
		}
	}
	return VersionSet{vs: out}
}

// SubsetOf reports whether every version of s is in o.
func (s VersionSet) SubsetOf(o VersionSet) bool {
	for _, v := range s.vs {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same versions.
func (s VersionSet) Equal(o VersionSet) bool {
	return slices.Equal(s.vs, o.vs)
}

func (s VersionSet) String() string {
	parts := make([]string, len(s.vs))
	for i, v := range s.vs {
		parts[i] = strconv.Itoa(int(v))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// MarshalJSON encodes the set as a sorted array.
func (s VersionSet) MarshalJSON() ([]byte, error) {
	if s.vs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.vs)
}

// UnmarshalJSON decodes a JSON array of versions.
func (s *VersionSet) UnmarshalJSON(data []byte) error {
	var vs []Version
	if err := json.Unmarshal(data, &vs); err != nil {
		return err
	}
	*s = NewVersionSet(vs...)
	return nil
}

// VersionKey indexes an ErrorMap: either a concrete version or GlobalKey.
type VersionKey int

// GlobalKey holds findings that invalidate every version alike.
const GlobalKey VersionKey = -1

// KeyOf returns the error-map key of v.
func KeyOf(v Version) VersionKey { return VersionKey(v) }

// IsGlobal reports whether k is GlobalKey.
func (k VersionKey) IsGlobal() bool { return k == GlobalKey }

// Version returns the concrete version of k; false for GlobalKey.
func (k VersionKey) Version() (Version, bool) {
	if k.IsGlobal() {
		return 0, false
	}
	return Version(k), true
}

func (k VersionKey) String() string {
	if k.IsGlobal() {
		return "GLOBAL"
	}
	return strconv.Itoa(int(k))
}
