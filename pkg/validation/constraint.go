package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ormasoftchile/wffcheck/pkg/element"
)

type clause struct {
	versions VersionSet
	required []RuleItem
	allowed  []RuleItem
}

// Constraint is the versioned rule set of one element tag. Constraints are
// immutable once built and may be shared by concurrent validations.
type Constraint struct {
	tag      string
	universe VersionRange
	clauses  []clause
}

// TagName returns the tag the constraint applies to.
func (c *Constraint) TagName() string { return c.tag }

// Universe returns the version range the constraint was built for.
func (c *Constraint) Universe() VersionRange { return c.universe }

// Check evaluates the required conditions of every clause and registers the
// clause's attribute, child and content rules into ctx, in declaration order.
func (c *Constraint) Check(el *element.Element, ctx *Context) Outcome {
	out := SuccessOf(ctx.universe)
	for _, cl := range c.clauses {
		for _, it := range cl.required {
			out = Combine(out, it.apply(el, ctx, cl.versions, true))
		}
		for _, it := range cl.allowed {
			out = Combine(out, it.apply(el, ctx, cl.versions, false))
		}
	}
	return out
}

// children returns the child rules of every clause, choices flattened.
func (c *Constraint) children() []*ChildRule {
	var out []*ChildRule
	for _, cl := range c.clauses {
		for _, items := range [][]RuleItem{cl.required, cl.allowed} {
			for _, it := range items {
				switch r := it.(type) {
				case *ChildRule:
					out = append(out, r)
				case *Choice:
					out = append(out, r.Alternatives...)
				}
			}
		}
	}
	return out
}

// Lazy memoizes a constraint factory so recursive catalogues build each
// constraint once. The result is safe for concurrent use.
func Lazy(build func() *Constraint) ConstraintFactory {
	return sync.OnceValue(build)
}

type versionSpec struct {
	all      bool
	min, max Version
	from     bool
}

func (s versionSpec) resolve(u VersionRange) (VersionSet, error) {
	switch {
	case s.all:
		return u.All(), nil
	case s.from:
		if !u.Contains(s.min) {
			return VersionSet{}, fmt.Errorf("version %d outside %s", s.min, u)
		}
		return VersionsBetween(s.min, u.Max), nil
	default:
		if s.min > s.max {
			return VersionSet{}, fmt.Errorf("inverted version range %d..%d", s.min, s.max)
		}
		if !u.Contains(s.min) || !u.Contains(s.max) {
			return VersionSet{}, fmt.Errorf("versions %d..%d outside %s", s.min, s.max, u)
		}
		return VersionsBetween(s.min, s.max), nil
	}
}

type clauseSpec struct {
	versions versionSpec
	required []RuleItem
	allowed  []RuleItem
}

// ConstraintBuilder assembles a Constraint clause by clause.
//
//	NewConstraint("Group").
//		AllVersions().
//			Require(Attribute("name", nil, "")).
//			Allow(ChildElement("PartText", partText)).
//		Versions(2, 4).
//			Allow(Attribute("renderMode", OneOf("SOURCE", "MASK"), "invalid render mode")).
//		MustBuild(universe)
type ConstraintBuilder struct {
	tag     string
	clauses []*clauseSpec
}

// NewConstraint starts a constraint for tag.
func NewConstraint(tag string) *ConstraintBuilder {
	return &ConstraintBuilder{tag: tag}
}

// AllVersions opens a clause covering the whole universe.
func (b *ConstraintBuilder) AllVersions() *ClauseBuilder {
	return b.open(versionSpec{all: true})
}

// Versions opens a clause covering [min, max].
func (b *ConstraintBuilder) Versions(min, max Version) *ClauseBuilder {
	return b.open(versionSpec{min: min, max: max})
}

// From opens a clause covering v up to the newest version of the universe.
func (b *ConstraintBuilder) From(v Version) *ClauseBuilder {
	return b.open(versionSpec{min: v, from: true})
}

func (b *ConstraintBuilder) open(vs versionSpec) *ClauseBuilder {
	cs := &clauseSpec{versions: vs}
	b.clauses = append(b.clauses, cs)
	return &ClauseBuilder{parent: b, clause: cs}
}

// Build resolves the clauses against universe u. Versions outside u and
// malformed rule items are construction errors.
func (b *ConstraintBuilder) Build(u VersionRange) (*Constraint, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("constraint <%s>: %w", b.tag, err)
	}
	if b.tag == "" {
		return nil, errors.New("constraint without a tag name")
	}
	c := &Constraint{tag: b.tag, universe: u}
	for i, cs := range b.clauses {
		versions, err := cs.versions.resolve(u)
		if err != nil {
			return nil, fmt.Errorf("constraint <%s> clause %d: %w", b.tag, i, err)
		}
		for _, it := range append(append([]RuleItem(nil), cs.required...), cs.allowed...) {
			if it == nil {
				return nil, fmt.Errorf("constraint <%s> clause %d: nil rule item", b.tag, i)
			}
			if err := it.validate(); err != nil {
				return nil, fmt.Errorf("constraint <%s> clause %d: %w", b.tag, i, err)
			}
		}
		c.clauses = append(c.clauses, clause{
			versions: versions,
			required: append([]RuleItem(nil), cs.required...),
			allowed:  append([]RuleItem(nil), cs.allowed...),
		})
	}
	return c, nil
}

// MustBuild is like Build but panics on a construction error.
func (b *ConstraintBuilder) MustBuild(u VersionRange) *Constraint {
	c, err := b.Build(u)
	if err != nil {
		panic(err)
	}
	return c
}

// ClauseBuilder adds items to one version-scoped clause.
type ClauseBuilder struct {
	parent *ConstraintBuilder
	clause *clauseSpec
}

// Require adds items that must hold for every version of the clause.
func (c *ClauseBuilder) Require(items ...RuleItem) *ClauseBuilder {
	c.clause.required = append(c.clause.required, items...)
	return c
}

// Allow adds items that are permitted, but not required, in the clause.
func (c *ClauseBuilder) Allow(items ...RuleItem) *ClauseBuilder {
	c.clause.allowed = append(c.clause.allowed, items...)
	return c
}

// AllVersions closes this clause and opens one covering every version.
func (c *ClauseBuilder) AllVersions() *ClauseBuilder { return c.parent.AllVersions() }

// Versions closes this clause and opens one covering [min, max].
func (c *ClauseBuilder) Versions(min, max Version) *ClauseBuilder {
	return c.parent.Versions(min, max)
}

// From closes this clause and opens one covering v and later.
func (c *ClauseBuilder) From(v Version) *ClauseBuilder { return c.parent.From(v) }

// Build builds the whole constraint.
func (c *ClauseBuilder) Build(u VersionRange) (*Constraint, error) { return c.parent.Build(u) }

// MustBuild builds the whole constraint and panics on error.
func (c *ClauseBuilder) MustBuild(u VersionRange) *Constraint { return c.parent.MustBuild(u) }
