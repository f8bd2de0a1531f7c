package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ormasoftchile/wffcheck/pkg/element"
)

// Unbounded marks a child rule without an upper occurrence limit.
const Unbounded = -1

// ValuePredicate checks an attribute value or element text.
type ValuePredicate func(value string, ctx *Context) bool

// ElementPredicate checks a whole element.
type ElementPredicate func(el *element.Element, ctx *Context) bool

// ValueChecker produces a full Outcome for a value, for checks that need
// their own finding kinds (expressions, for instance). versions is the
// range of the clause the rule was declared in.
type ValueChecker interface {
	CheckValue(value string, ctx *Context, versions VersionSet) Outcome
}

// ConstraintFactory returns the constraint that applies to a child element.
type ConstraintFactory func() *Constraint

// RuleItem is a checkable unit of a constraint clause. Implementations are
// AttributeRule, ChildRule, ContentRule, Condition and Choice.
type RuleItem interface {
	// Check evaluates the item against el; findings are scoped to versions.
	Check(el *element.Element, ctx *Context, versions VersionSet) Outcome

	// apply runs the item as part of a constraint check: conditions are
	// evaluated, the other items register themselves into ctx.
	apply(el *element.Element, ctx *Context, versions VersionSet, required bool) Outcome
	validate() error
}

// AttributeRule declares an attribute and the rule its value must follow.
type AttributeRule struct {
	Name      string
	Predicate ValuePredicate
	ErrorText string
	Checker   ValueChecker

	def *string
}

// AttributeOption configures an AttributeRule.
type AttributeOption func(*AttributeRule)

// Default records the implied value of an absent attribute. A required
// attribute with a default may be omitted.
func Default(value string) AttributeOption {
	return func(r *AttributeRule) { r.def = &value }
}

// CheckedBy delegates value checking to c instead of the predicate.
func CheckedBy(c ValueChecker) AttributeOption {
	return func(r *AttributeRule) { r.Checker = c }
}

// Attribute declares the attribute name. A nil predicate accepts any value.
func Attribute(name string, pred ValuePredicate, errorText string, opts ...AttributeOption) *AttributeRule {
	r := &AttributeRule{Name: name, Predicate: pred, ErrorText: errorText}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultValue returns the implied value of the attribute, if any.
func (r *AttributeRule) DefaultValue() (string, bool) {
	if r.def == nil {
		return "", false
	}
	return *r.def, true
}

func (r *AttributeRule) Check(el *element.Element, ctx *Context, versions VersionSet) Outcome {
	value, ok := el.Attr(r.Name)
	if !ok {
		return SuccessOf(ctx.universe)
	}
	if r.Checker != nil {
		return r.Checker.CheckValue(value, ctx, versions)
	}
	if r.Predicate == nil || r.Predicate(value, ctx) {
		return SuccessOf(ctx.universe)
	}
	return ctx.exclude(versions, AttributeValue{
		Name:        r.Name,
		Value:       value,
		Text:        r.ErrorText,
		ElementPath: ctx.Path(),
	})
}

func (r *AttributeRule) apply(_ *element.Element, ctx *Context, versions VersionSet, required bool) Outcome {
	ctx.registerAttribute(r, versions, required)
	return SuccessOf(ctx.universe)
}

func (r *AttributeRule) validate() error {
	if r.Name == "" {
		return errors.New("attribute rule without a name")
	}
	return nil
}

// ChildRule declares a child element and the constraint it follows.
type ChildRule struct {
	Tag     string
	Factory ConstraintFactory
	Min     int
	Max     int
}

// ChildOption configures a ChildRule.
type ChildOption func(*ChildRule)

// Occurs sets both occurrence bounds. Use Unbounded for no upper limit.
func Occurs(min, max int) ChildOption {
	return func(r *ChildRule) { r.Min, r.Max = min, max }
}

// MinOccurs sets the lower occurrence bound.
func MinOccurs(n int) ChildOption {
	return func(r *ChildRule) { r.Min = n }
}

// MaxOccurs sets the upper occurrence bound.
func MaxOccurs(n int) ChildOption {
	return func(r *ChildRule) { r.Max = n }
}

// ChildElement declares a child element. Without options the child may occur any
// positive number of times.
func ChildElement(tag string, factory ConstraintFactory, opts ...ChildOption) *ChildRule {
	r := &ChildRule{Tag: tag, Factory: factory, Min: 1, Max: Unbounded}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check compares the number of tag children of el with the bounds.
func (r *ChildRule) Check(el *element.Element, ctx *Context, versions VersionSet) Outcome {
	n := len(el.ChildrenByTag(r.Tag))
	if withinOccurs(n, r.Min, r.Max) {
		return SuccessOf(ctx.universe)
	}
	return ctx.exclude(versions, TagOccurrence{
		Tag:         r.Tag,
		Actual:      n,
		Min:         r.Min,
		Max:         r.Max,
		ElementPath: ctx.Path(),
	})
}

func (r *ChildRule) apply(_ *element.Element, ctx *Context, versions VersionSet, required bool) Outcome {
	ctx.registerChild(r, versions)
	ctx.addObligation(r, versions, required)
	return SuccessOf(ctx.universe)
}

func (r *ChildRule) validate() error {
	if r.Tag == "" {
		return errors.New("child rule without a tag")
	}
	if r.Factory == nil {
		return fmt.Errorf("child rule <%s> has no constraint factory", r.Tag)
	}
	return validateOccurs(r.Tag, r.Min, r.Max)
}

// ContentRule declares the text content of an element.
type ContentRule struct {
	Predicate ValuePredicate
	ErrorText string
	Checker   ValueChecker
}

// TextContent declares element text that must satisfy pred.
func TextContent(pred ValuePredicate, errorText string) *ContentRule {
	return &ContentRule{Predicate: pred, ErrorText: errorText}
}

// TextContentCheckedBy declares element text checked by c.
func TextContentCheckedBy(c ValueChecker) *ContentRule {
	return &ContentRule{Checker: c}
}

// Check evaluates non-blank text; blank text is absent content and passes.
func (r *ContentRule) Check(el *element.Element, ctx *Context, versions VersionSet) Outcome {
	if !el.HasContent() {
		return SuccessOf(ctx.universe)
	}
	if r.Checker != nil {
		return r.Checker.CheckValue(el.Text, ctx, versions)
	}
	if r.Predicate == nil || r.Predicate(el.Text, ctx) {
		return SuccessOf(ctx.universe)
	}
	return ctx.exclude(versions, Content{
		Content:     el.Text,
		Text:        r.ErrorText,
		ElementPath: ctx.Path(),
	})
}

func (r *ContentRule) apply(_ *element.Element, ctx *Context, versions VersionSet, required bool) Outcome {
	ctx.registerContent(r, versions, required)
	return SuccessOf(ctx.universe)
}

func (r *ContentRule) validate() error { return nil }

// Condition is a free-form predicate over the element and its context.
//
// Required conditions must hold for the clause versions. An allowed
// condition describes a feature: when it holds, the document uses the
// feature and every version outside the clause is eliminated.
type Condition struct {
	Predicate ElementPredicate
	ErrorText string
}

// Satisfies declares a condition.
func Satisfies(pred ElementPredicate, errorText string) *Condition {
	return &Condition{Predicate: pred, ErrorText: errorText}
}

// Holds evaluates the predicate.
func (c *Condition) Holds(el *element.Element, ctx *Context) bool {
	return c.Predicate(el, ctx)
}

func (c *Condition) Check(el *element.Element, ctx *Context, versions VersionSet) Outcome {
	if c.Holds(el, ctx) {
		return SuccessOf(ctx.universe)
	}
	return ctx.exclude(versions, RequiredConditionFailed{Text: c.ErrorText, ElementPath: ctx.Path()})
}

func (c *Condition) apply(el *element.Element, ctx *Context, versions VersionSet, required bool) Outcome {
	if required {
		return c.Check(el, ctx, versions)
	}
	if !c.Holds(el, ctx) {
		return SuccessOf(ctx.universe)
	}
	return ctx.restrictTo(versions, VersionElimination{
		Text:        c.ErrorText,
		Permitted:   versions,
		ElementPath: ctx.Path(),
	})
}

func (c *Condition) validate() error {
	if c.Predicate == nil {
		return errors.New("condition without a predicate")
	}
	return nil
}

// Choice groups child alternatives that share one occurrence range: every
// child matching any alternative counts toward it.
type Choice struct {
	Alternatives []*ChildRule
	Min          int
	Max          int
	ErrorText    string
}

// ChoiceOption configures a Choice.
type ChoiceOption func(*Choice)

// ChoiceOccurs sets the combined occurrence bounds.
func ChoiceOccurs(min, max int) ChoiceOption {
	return func(c *Choice) { c.Min, c.Max = min, max }
}

// ChoiceMessage sets the text reported when the bounds are violated.
func ChoiceMessage(text string) ChoiceOption {
	return func(c *Choice) { c.ErrorText = text }
}

// ChoiceOf groups alternatives; by default exactly one of them must occur.
func ChoiceOf(alternatives []*ChildRule, opts ...ChoiceOption) *Choice {
	c := &Choice{Alternatives: alternatives, Min: 1, Max: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name joins the alternative tags, as in "PartText|PartImage".
func (c *Choice) Name() string {
	tags := make([]string, len(c.Alternatives))
	for i, a := range c.Alternatives {
		tags[i] = a.Tag
	}
	return strings.Join(tags, "|")
}

func (c *Choice) count(el *element.Element) int {
	n := 0
	for _, child := range el.Children {
		for _, a := range c.Alternatives {
			if child.TagName == a.Tag {
				n++
				break
			}
		}
	}
	return n
}

// Check compares the combined count of all alternatives with the bounds.
func (c *Choice) Check(el *element.Element, ctx *Context, versions VersionSet) Outcome {
	n := c.count(el)
	if withinOccurs(n, c.Min, c.Max) {
		return SuccessOf(ctx.universe)
	}
	return ctx.exclude(versions, TagOccurrence{
		Tag:         c.Name(),
		Actual:      n,
		Min:         c.Min,
		Max:         c.Max,
		Text:        c.ErrorText,
		ElementPath: ctx.Path(),
	})
}

func (c *Choice) apply(_ *element.Element, ctx *Context, versions VersionSet, required bool) Outcome {
	for _, a := range c.Alternatives {
		ctx.registerChild(a, versions)
	}
	ctx.addObligation(c, versions, required)
	return SuccessOf(ctx.universe)
}

func (c *Choice) validate() error {
	if len(c.Alternatives) == 0 {
		return errors.New("choice without alternatives")
	}
	for _, a := range c.Alternatives {
		if err := a.validate(); err != nil {
			return fmt.Errorf("choice %s: %w", c.Name(), err)
		}
	}
	return validateOccurs(c.Name(), c.Min, c.Max)
}

func withinOccurs(n, min, max int) bool {
	return n >= min && (max == Unbounded || n <= max)
}

func validateOccurs(name string, min, max int) error {
	if min < 0 {
		return fmt.Errorf("<%s>: negative minimum occurrence %d", name, min)
	}
	if max != Unbounded && max < min {
		return fmt.Errorf("<%s>: maximum occurrence %d below minimum %d", name, max, min)
	}
	return nil
}
