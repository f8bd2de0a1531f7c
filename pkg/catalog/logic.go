package catalog

import (
	"slices"

	"github.com/ormasoftchile/wffcheck/pkg/element"
	"github.com/ormasoftchile/wffcheck/pkg/validation"
)

// <Condition> picks the first <Compare> whose named expression holds, or
// falls back to <Default>. Branches hold layers like a Group does.
func (c *catalog) buildCondition() *validation.Constraint {
	return validation.NewConstraint("Condition").
		AllVersions().
		Require(
			validation.ChildElement("Expressions", c.expressions, validation.Occurs(1, 1)),
			validation.ChildElement("Compare", c.compare),
			validation.Satisfies(comparesDeclared, "every Compare must name an Expression of the Condition"),
		).
		Allow(validation.ChildElement("Default", c.dflt, validation.Occurs(0, 1))).
		MustBuild(c.u)
}

// comparesDeclared reports whether each Compare refers to an Expression
// declared in the sibling Expressions block.
func comparesDeclared(el *element.Element, _ *validation.Context) bool {
	var names []string
	for _, block := range el.ChildrenByTag("Expressions") {
		for _, e := range block.ChildrenByTag("Expression") {
			if name, ok := e.Attr("name"); ok {
				names = append(names, name)
			}
		}
	}
	for _, cmp := range el.ChildrenByTag("Compare") {
		name, ok := cmp.Attr("expression")
		if ok && !slices.Contains(names, name) {
			return false
		}
	}
	return true
}

func (c *catalog) buildExpressions() *validation.Constraint {
	return validation.NewConstraint("Expressions").
		AllVersions().
		Require(validation.ChildElement("Expression", c.expression)).
		MustBuild(c.u)
}

func (c *catalog) buildExpression() *validation.Constraint {
	return validation.NewConstraint("Expression").
		AllVersions().
		Require(
			validation.Attribute("name", validation.NonEmpty(), "expression name must not be empty"),
			validation.TextContentCheckedBy(c.expr),
		).
		MustBuild(c.u)
}

func (c *catalog) buildBranch(tag string, items ...validation.RuleItem) func() *validation.Constraint {
	return func() *validation.Constraint {
		return validation.NewConstraint(tag).
			AllVersions().
			Require(items...).
			Allow(c.layers()...).
			MustBuild(c.u)
	}
}
