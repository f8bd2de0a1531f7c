package validation

import (
	"maps"
	"reflect"
	"slices"
)

// ErrorMap groups findings by the version they exclude. Findings under
// GlobalKey exclude every version. Maps held by an Outcome must not be
// modified.
type ErrorMap map[VersionKey][]ValidationError

// Keys returns the populated keys, GlobalKey first, then ascending versions.
func (m ErrorMap) Keys() []VersionKey {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}

// Count returns the total number of findings across all keys.
func (m ErrorMap) Count() int {
	n := 0
	for _, errs := range m {
		n += len(errs)
	}
	return n
}

// GlobalErrors returns an ErrorMap holding e under GlobalKey.
func GlobalErrors(e ValidationError) ErrorMap {
	return ErrorMap{GlobalKey: {e}}
}

// VersionErrors returns an ErrorMap holding e under each version of vs.
func VersionErrors(vs VersionSet, e ValidationError) ErrorMap {
	if vs.Empty() {
		return nil
	}
	m := make(ErrorMap, vs.Len())
	for _, v := range vs.vs {
		m[KeyOf(v)] = []ValidationError{e}
	}
	return m
}

// mergeErrors returns a new map holding both inputs; lists under a shared
// key are concatenated with a's findings first.
func mergeErrors(a, b ErrorMap) ErrorMap {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(ErrorMap, len(a)+len(b))
	for k, errs := range a {
		out[k] = slices.Clone(errs)
	}
	for k, errs := range b {
		out[k] = append(out[k], errs...)
	}
	return out
}

// OutcomeKind is the variant of an Outcome.
type OutcomeKind int

const (
	// Failure means no version is valid.
	Failure OutcomeKind = iota
	// PartialSuccess means some versions are valid and findings explain the rest.
	PartialSuccess
	// Success means every version is valid and nothing was reported.
	Success
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case PartialSuccess:
		return "partial-success"
	default:
		return "failure"
	}
}

// Outcome is the validity and findings for an element or subtree.
// Outcomes are values; Combine builds new ones without touching its inputs.
// The zero Outcome is a Failure with no findings.
type Outcome struct {
	valid  VersionSet
	errors ErrorMap
}

// Of normalizes a version set and findings into an Outcome.
func Of(valid VersionSet, errs ErrorMap) Outcome {
	if len(errs) == 0 {
		errs = nil
	}
	return Outcome{valid: valid, errors: errs}
}

// SuccessOf returns the Success outcome of universe u.
func SuccessOf(u VersionRange) Outcome {
	return Outcome{valid: u.All()}
}

// FailureOf returns an outcome with no valid versions.
func FailureOf(errs ErrorMap) Outcome {
	return Of(VersionSet{}, errs)
}

// Kind returns the variant of o.
func (o Outcome) Kind() OutcomeKind {
	switch {
	case o.valid.Empty():
		return Failure
	case len(o.errors) > 0:
		return PartialSuccess
	default:
		return Success
	}
}

// ValidVersions returns the versions o still considers valid.
func (o Outcome) ValidVersions() VersionSet { return o.valid }

// Errors returns the findings of o. The map must not be modified.
func (o Outcome) Errors() ErrorMap { return o.errors }

// ErrorsFor returns the findings recorded under k.
func (o Outcome) ErrorsFor(k VersionKey) []ValidationError { return o.errors[k] }

// Equal reports whether both outcomes hold the same versions and findings
// in the same order.
func (o Outcome) Equal(p Outcome) bool {
	return o.valid.Equal(p.valid) && reflect.DeepEqual(o.errors, p.errors)
}

// Combine intersects the valid versions of a and b and merges their findings,
// a's before b's under each key.
func Combine(a, b Outcome) Outcome {
	return Of(a.valid.Intersect(b.valid), mergeErrors(a.errors, b.errors))
}

// CombineAll folds outcomes left to right with Combine.
func CombineAll(first Outcome, rest ...Outcome) Outcome {
	out := first
	for _, o := range rest {
		out = Combine(out, o)
	}
	return out
}

// confine restricts the effect of o to the versions in scope: versions
// outside scope stay valid, findings under them are dropped and global
// findings are re-keyed to each version of scope.
func (o Outcome) confine(scope VersionSet, u VersionRange) Outcome {
	valid := o.valid.Intersect(scope).Union(u.All().Difference(scope))
	var errs ErrorMap
	for _, k := range o.errors.Keys() {
		if k.IsGlobal() {
			for _, e := range o.errors[k] {
				errs = mergeErrors(errs, VersionErrors(scope, e))
			}
			continue
		}
		if v, _ := k.Version(); scope.Contains(v) {
			errs = mergeErrors(errs, ErrorMap{k: o.errors[k]})
		}
	}
	return Of(valid, errs)
}
