package validation

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ormasoftchile/wffcheck/pkg/element"
)

type attributeBinding struct {
	rule     *AttributeRule
	versions VersionSet
}

type childBinding struct {
	rule     *ChildRule
	versions VersionSet
}

type contentBinding struct {
	rule     *ContentRule
	versions VersionSet
}

type obligation struct {
	item     RuleItem
	versions VersionSet
	required bool
}

// Context is the per-element validation state. It carries the attribute
// scope inherited from ancestors, the element path used for findings, and
// the rules the element's constraint registered for its attributes,
// children and content. A Context is created for one element and dropped
// once that element is validated.
type Context struct {
	universe VersionRange
	scope    map[string]string
	path     []string

	attributes  map[string][]attributeBinding
	children    map[string][]childBinding
	content     []contentBinding
	obligations []obligation
}

// NewContext returns the root context for universe u.
func NewContext(u VersionRange) *Context {
	return &Context{
		universe:   u,
		scope:      map[string]string{},
		attributes: map[string][]attributeBinding{},
		children:   map[string][]childBinding{},
	}
}

// Extend returns the context for el, a child of the element ctx belongs
// to. The attributes of el override inherited ones with the same name.
func (ctx *Context) Extend(el *element.Element) *Context {
	next := NewContext(ctx.universe)
	maps.Copy(next.scope, ctx.scope)
	for _, a := range el.Attributes {
		next.scope[a.Name] = a.Value
	}
	next.path = append(slices.Clone(ctx.path), el.TagName)
	return next
}

// Universe returns the version universe of the validation.
func (ctx *Context) Universe() VersionRange { return ctx.universe }

// Scope looks up an attribute declared by the element or an ancestor.
func (ctx *Context) Scope(name string) (string, bool) {
	v, ok := ctx.scope[name]
	return v, ok
}

// Path returns the tag names from the root to the current element.
func (ctx *Context) Path() []string { return slices.Clone(ctx.path) }

// Exclude returns an outcome that invalidates versions and records e under
// each of them. Intended for ValueChecker implementations.
func (ctx *Context) Exclude(versions VersionSet, e ValidationError) Outcome {
	return ctx.exclude(versions, e)
}

// RestrictTo returns an outcome that keeps only permitted versions valid
// and records e under every other version.
func (ctx *Context) RestrictTo(permitted VersionSet, e ValidationError) Outcome {
	return ctx.restrictTo(permitted, e)
}

func (ctx *Context) exclude(versions VersionSet, e ValidationError) Outcome {
	return Of(ctx.universe.All().Difference(versions), VersionErrors(versions, e))
}

func (ctx *Context) restrictTo(permitted VersionSet, e ValidationError) Outcome {
	eliminated := ctx.universe.All().Difference(permitted)
	if eliminated.Empty() {
		return SuccessOf(ctx.universe)
	}
	return Of(permitted.Intersect(ctx.universe.All()), VersionErrors(eliminated, e))
}

func (ctx *Context) registerAttribute(r *AttributeRule, versions VersionSet, required bool) {
	ctx.attributes[r.Name] = append(ctx.attributes[r.Name], attributeBinding{rule: r, versions: versions})
	if required {
		ctx.addObligation(r, versions, true)
	}
}

func (ctx *Context) registerChild(r *ChildRule, versions VersionSet) {
	ctx.children[r.Tag] = append(ctx.children[r.Tag], childBinding{rule: r, versions: versions})
}

func (ctx *Context) registerContent(r *ContentRule, versions VersionSet, required bool) {
	ctx.content = append(ctx.content, contentBinding{rule: r, versions: versions})
	if required {
		ctx.addObligation(r, versions, true)
	}
}

func (ctx *Context) addObligation(item RuleItem, versions VersionSet, required bool) {
	ctx.obligations = append(ctx.obligations, obligation{item: item, versions: versions, required: required})
}

// checkAttribute validates one attribute of el against every rule
// registered for its name.
func (ctx *Context) checkAttribute(el *element.Element, name string) Outcome {
	bindings := ctx.attributes[name]
	if len(bindings) == 0 {
		return FailureOf(GlobalErrors(IllegalAttribute{Name: name, ElementPath: ctx.Path()}))
	}
	permitted := VersionSet{}
	for _, b := range bindings {
		permitted = permitted.Union(b.versions)
	}
	out := ctx.restrictTo(permitted, VersionElimination{
		Text:        fmt.Sprintf("attribute %q is not available in this version", name),
		Permitted:   permitted,
		ElementPath: ctx.Path(),
	})
	for _, b := range bindings {
		out = Combine(out, b.rule.Check(el, ctx, b.versions))
	}
	return out
}

// checkContent validates the text of el against the registered content rules.
func (ctx *Context) checkContent(el *element.Element) Outcome {
	out := SuccessOf(ctx.universe)
	if len(ctx.content) == 0 || !el.HasContent() {
		return out
	}
	permitted := VersionSet{}
	for _, b := range ctx.content {
		permitted = permitted.Union(b.versions)
	}
	out = ctx.restrictTo(permitted, VersionElimination{
		Text:        "text content is not available in this version",
		Permitted:   permitted,
		ElementPath: ctx.Path(),
	})
	for _, b := range ctx.content {
		out = Combine(out, b.rule.Check(el, ctx, b.versions))
	}
	return out
}

// childRules returns the bindings registered for tag.
func (ctx *Context) childRules(tag string) []childBinding {
	return ctx.children[tag]
}

// checkChildUsage eliminates the versions none of the bindings of tag cover.
func (ctx *Context) checkChildUsage(tag string) Outcome {
	permitted := VersionSet{}
	for _, b := range ctx.children[tag] {
		permitted = permitted.Union(b.versions)
	}
	return ctx.restrictTo(permitted, VersionElimination{
		Text:        fmt.Sprintf("element <%s> is not available in this version", tag),
		Permitted:   permitted,
		ElementPath: ctx.Path(),
	})
}

// settle evaluates existence and occurrence obligations once the element's
// attributes, content and children have been scanned.
func (ctx *Context) settle(el *element.Element) Outcome {
	out := SuccessOf(ctx.universe)
	for _, ob := range ctx.obligations {
		switch it := ob.item.(type) {
		case *AttributeRule:
			if el.HasAttr(it.Name) {
				continue
			}
			if _, ok := it.DefaultValue(); ok {
				continue
			}
			out = Combine(out, ctx.exclude(ob.versions, RequiredConditionFailed{
				Text:        fmt.Sprintf("missing required attribute %q", it.Name),
				ElementPath: ctx.Path(),
			}))
		case *ContentRule:
			if !el.HasContent() {
				out = Combine(out, ctx.exclude(ob.versions, RequiredConditionFailed{
					Text:        "missing required text content",
					ElementPath: ctx.Path(),
				}))
			}
		case *ChildRule:
			if len(el.ChildrenByTag(it.Tag)) == 0 {
				if ob.required && it.Min > 0 {
					out = Combine(out, ctx.exclude(ob.versions, RequiredConditionFailed{
						Text:        fmt.Sprintf("missing required element <%s>", it.Tag),
						ElementPath: ctx.Path(),
					}))
				}
				continue
			}
			out = Combine(out, it.Check(el, ctx, ob.versions))
		case *Choice:
			if it.count(el) == 0 && !ob.required {
				continue
			}
			out = Combine(out, it.Check(el, ctx, ob.versions))
		}
	}
	return out
}
