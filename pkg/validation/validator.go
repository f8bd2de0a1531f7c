// Package validation checks watch face element trees against versioned
// constraints and reports, per format version, whether the document is
// valid and which findings exclude the other versions.
//
// A specification is a tree of Constraints assembled with NewConstraint.
// Each constraint holds clauses scoped to version ranges; a clause lists
// required items (must hold for the whole range) and allowed items (may be
// used, but only in that range). The Validator walks the document against
// the constraint tree and folds every finding into one Outcome.
package validation

import (
	"errors"
	"fmt"

	"github.com/ormasoftchile/wffcheck/pkg/element"
)

// Specification is a constraint tree plus the versions a caller targets.
type Specification struct {
	Root     *Constraint
	Universe VersionRange
	Targets  VersionSet
}

// NewSpecification checks the constraint tree reachable from root and
// returns a specification targeting targets (the whole universe when
// empty). Child factories are resolved along every path until a tag
// repeats, so construction faults surface here instead of mid-validation.
// Recursive factories need not be memoized; the walk does not follow a tag
// back into itself.
func NewSpecification(root *Constraint, targets VersionSet) (*Specification, error) {
	if root == nil {
		return nil, errors.New("specification: nil root constraint")
	}
	u := root.Universe()
	if targets.Empty() {
		targets = u.All()
	}
	if !targets.SubsetOf(u.All()) {
		return nil, fmt.Errorf("specification: targets %s outside %s", targets, u)
	}

	seen := map[*Constraint]bool{}
	var walk func(c *Constraint, onPath map[string]bool) error
	walk = func(c *Constraint, onPath map[string]bool) error {
		if seen[c] {
			return nil
		}
		seen[c] = true
		if c.Universe() != u {
			return fmt.Errorf("specification: <%s> built for %s, root uses %s", c.TagName(), c.Universe(), u)
		}
		onPath[c.TagName()] = true
		defer delete(onPath, c.TagName())
		for _, r := range c.children() {
			if onPath[r.Tag] {
				continue
			}
			sub := r.Factory()
			if sub == nil {
				return fmt.Errorf("specification: <%s> child <%s> factory returned nil", c.TagName(), r.Tag)
			}
			if err := walk(sub, onPath); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, map[string]bool{}); err != nil {
		return nil, err
	}
	return &Specification{Root: root, Universe: u, Targets: targets}, nil
}

// Option configures a Validator.
type Option func(*Validator)

// CollectAll keeps scanning children after every version is already
// excluded, trading speed for a complete list of findings.
func CollectAll() Option {
	return func(v *Validator) { v.collectAll = true }
}

// Validator walks documents against a specification. It holds no
// per-document state and may be used from several goroutines.
type Validator struct {
	spec       *Specification
	collectAll bool
}

// NewValidator returns a validator for spec.
func NewValidator(spec *Specification, opts ...Option) *Validator {
	v := &Validator{spec: spec}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Specification returns the specification v validates against.
func (v *Validator) Specification() *Specification { return v.spec }

// Validate returns the outcome of checking doc against the specification.
func (v *Validator) Validate(doc *element.Element) Outcome {
	root := NewContext(v.spec.Universe)
	if doc == nil {
		return FailureOf(GlobalErrors(Unknown{Text: "empty document"}))
	}
	if doc.TagName != v.spec.Root.TagName() {
		return FailureOf(GlobalErrors(IllegalTag{Tag: doc.TagName, ElementPath: root.Path()}))
	}
	return v.validate(doc, v.spec.Root, root)
}

// FindValidVersions returns the targeted versions doc is valid for.
func (v *Validator) FindValidVersions(doc *element.Element) VersionSet {
	return v.Validate(doc).ValidVersions().Intersect(v.spec.Targets)
}

func (v *Validator) validate(el *element.Element, c *Constraint, parent *Context) Outcome {
	ctx := parent.Extend(el)
	result := c.Check(el, ctx)

	for _, a := range el.Attributes {
		result = Combine(result, ctx.checkAttribute(el, a.Name))
	}
	result = Combine(result, ctx.checkContent(el))

	used := map[string]bool{}
	for _, child := range el.Children {
		if v.exhausted(result) {
			return result
		}
		bindings := ctx.childRules(child.TagName)
		if len(bindings) == 0 {
			result = Combine(result, FailureOf(GlobalErrors(IllegalTag{Tag: child.TagName, ElementPath: ctx.Path()})))
			continue
		}
		if !used[child.TagName] {
			used[child.TagName] = true
			result = Combine(result, ctx.checkChildUsage(child.TagName))
		}
		result = Combine(result, v.validateChild(child, bindings, ctx))
	}

	if v.exhausted(result) {
		return result
	}
	return Combine(result, ctx.settle(el))
}

// exhausted reports whether the walk may stop: no version is left to save.
// Findings on the skipped part of the subtree are not reported.
func (v *Validator) exhausted(o Outcome) bool {
	return !v.collectAll && o.ValidVersions().Empty()
}

// validateChild recurses into child. When several clauses bind the tag to
// different constraints, each result only speaks for its own versions.
func (v *Validator) validateChild(child *element.Element, bindings []childBinding, ctx *Context) Outcome {
	type target struct {
		constraint *Constraint
		versions   VersionSet
	}
	var targets []target
	for _, b := range bindings {
		sub := b.rule.Factory()
		if err := checkResolved(sub, b.rule.Tag, ctx.universe); err != nil {
			return FailureOf(GlobalErrors(Unknown{Text: err.Error(), ElementPath: ctx.Path()}))
		}
		found := false
		for i := range targets {
			if targets[i].constraint == sub {
				targets[i].versions = targets[i].versions.Union(b.versions)
				found = true
				break
			}
		}
		if !found {
			targets = append(targets, target{constraint: sub, versions: b.versions})
		}
	}

	if len(targets) == 1 {
		return v.validate(child, targets[0].constraint, ctx)
	}
	out := SuccessOf(ctx.universe)
	for _, t := range targets {
		out = Combine(out, v.validate(child, t.constraint, ctx).confine(t.versions, ctx.universe))
	}
	return out
}

// checkResolved rejects a sub-constraint the specification walk could not
// vet because its tag recurses.
func checkResolved(sub *Constraint, tag string, u VersionRange) error {
	if sub == nil {
		return fmt.Errorf("rule for <%s> resolved to no constraint", tag)
	}
	if sub.Universe() != u {
		return fmt.Errorf("rule for <%s> built for %s, document validated against %s", tag, sub.Universe(), u)
	}
	return nil
}
