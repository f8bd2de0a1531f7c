package catalog

import (
	"github.com/ormasoftchile/wffcheck/pkg/element"
	"github.com/ormasoftchile/wffcheck/pkg/validation"
)

// animatable lists the attributes Variant and Transform may target.
var animatable = []string{"x", "y", "width", "height", "alpha", "angle", "pivotX", "pivotY"}

func (c *catalog) buildScene() *validation.Constraint {
	return validation.NewConstraint("Scene").
		AllVersions().
		Allow(validation.Attribute("backgroundColor", validation.IsColor(), "backgroundColor must be a color",
			validation.Default("#FF000000"))).
		Allow(c.layers()...).
		MustBuild(c.u)
}

// layers are the drawable children shared by Scene, Group and condition branches.
func (c *catalog) layers() []validation.RuleItem {
	return []validation.RuleItem{
		validation.ChildElement("Group", ref(&c.group)),
		validation.ChildElement("PartText", ref(&c.partText)),
		validation.ChildElement("PartImage", ref(&c.partImage)),
		validation.ChildElement("PartDraw", ref(&c.partDraw)),
		validation.ChildElement("Condition", ref(&c.condition)),
	}
}

// bounds are the position and size every layer must declare.
func bounds() []validation.RuleItem {
	return []validation.RuleItem{
		validation.Attribute("x", validation.IsFloat(), "x must be a number"),
		validation.Attribute("y", validation.IsFloat(), "y must be a number"),
		validation.Attribute("width", validation.FloatBetween(0, 4096), "width must be a non-negative number"),
		validation.Attribute("height", validation.FloatBetween(0, 4096), "height must be a non-negative number"),
	}
}

func (c *catalog) appearance() []validation.RuleItem {
	return []validation.RuleItem{
		validation.Attribute("name", nil, ""),
		validation.Attribute("alpha", validation.IntBetween(0, 255), "alpha must be between 0 and 255", validation.Default("255")),
		validation.Attribute("angle", validation.IsFloat(), "angle must be a number", validation.Default("0")),
		validation.Attribute("pivotX", validation.FloatBetween(0, 1), "pivotX must be between 0 and 1", validation.Default("0.5")),
		validation.Attribute("pivotY", validation.FloatBetween(0, 1), "pivotY must be between 0 and 1", validation.Default("0.5")),
		validation.ChildElement("Variant", c.variant, validation.MinOccurs(0)),
		validation.ChildElement("Transform", c.transform, validation.MinOccurs(0)),
	}
}

func (c *catalog) buildGroup() *validation.Constraint {
	return validation.NewConstraint("Group").
		AllVersions().
		Require(bounds()...).
		Allow(c.appearance()...).
		Allow(validation.Attribute("id", nil, "")).
		Allow(c.layers()...).
		From(3).
		Allow(validation.Attribute("renderMode", validation.OneOf("SOURCE", "MASK", "ALL"), "renderMode must be SOURCE, MASK or ALL")).
		From(4).
		Allow(validation.Attribute("tintColor", validation.IsColor(), "tintColor must be a color")).
		MustBuild(c.u)
}

func (c *catalog) buildPartText() *validation.Constraint {
	return validation.NewConstraint("PartText").
		AllVersions().
		Require(bounds()...).
		Require(validation.ChildElement("Text", c.text, validation.Occurs(1, 1))).
		Allow(c.appearance()...).
		From(3).
		Allow(validation.Attribute("renderMode", validation.OneOf("SOURCE", "MASK", "ALL"), "renderMode must be SOURCE, MASK or ALL")).
		From(4).
		Allow(validation.Attribute("tintColor", validation.IsColor(), "tintColor must be a color")).
		MustBuild(c.u)
}

func (c *catalog) buildPartImage() *validation.Constraint {
	return validation.NewConstraint("PartImage").
		AllVersions().
		Require(bounds()...).
		Require(validation.ChildElement("Image", c.image, validation.Occurs(1, 1))).
		Allow(c.appearance()...).
		From(3).
		Allow(validation.Attribute("renderMode", validation.OneOf("SOURCE", "MASK", "ALL"), "renderMode must be SOURCE, MASK or ALL")).
		From(4).
		Allow(validation.Attribute("tintColor", validation.IsColor(), "tintColor must be a color")).
		MustBuild(c.u)
}

func (c *catalog) buildPartDraw() *validation.Constraint {
	return validation.NewConstraint("PartDraw").
		AllVersions().
		Require(bounds()...).
		Require(validation.ChoiceOf([]*validation.ChildRule{
			validation.ChildElement("Line", c.line),
			validation.ChildElement("Arc", c.arc),
			validation.ChildElement("Rectangle", c.rectangle),
			validation.ChildElement("Ellipse", c.ellipse),
		}, validation.ChoiceOccurs(1, validation.Unbounded),
			validation.ChoiceMessage("PartDraw needs at least one shape"))).
		Allow(c.appearance()...).
		MustBuild(c.u)
}

// targetsEnclosing reports whether the target attribute names a value set
// on an enclosing element. Variant and Transform inherit their parent's
// attributes through the scope.
func targetsEnclosing(el *element.Element, ctx *validation.Context) bool {
	target, ok := el.Attr("target")
	if !ok {
		return true
	}
	_, ok = ctx.Scope(target)
	return ok
}

func (c *catalog) buildVariant() *validation.Constraint {
	return validation.NewConstraint("Variant").
		AllVersions().
		Require(
			validation.Attribute("mode", validation.OneOf("AMBIENT"), "mode must be AMBIENT"),
			validation.Attribute("target", validation.OneOf(animatable...), "target must be an animatable attribute"),
			validation.Attribute("value", validation.IsFloat(), "value must be a number"),
			validation.Satisfies(targetsEnclosing, "variant target must be set on the enclosing element"),
		).
		MustBuild(c.u)
}

func (c *catalog) buildTransform() *validation.Constraint {
	return validation.NewConstraint("Transform").
		AllVersions().
		Require(
			validation.Attribute("target", validation.OneOf(animatable...), "target must be an animatable attribute"),
			validation.Attribute("value", nil, "", validation.CheckedBy(c.expr)),
			validation.Satisfies(targetsEnclosing, "transform target must be set on the enclosing element"),
		).
		MustBuild(c.u)
}

func (c *catalog) buildText() *validation.Constraint {
	return validation.NewConstraint("Text").
		AllVersions().
		Require(validation.ChildElement("Font", c.font, validation.Occurs(1, 1))).
		Allow(
			validation.Attribute("align", validation.OneOf("START", "CENTER", "END"), "align must be START, CENTER or END",
				validation.Default("CENTER")),
			validation.Attribute("ellipsis", validation.IsBool(), "ellipsis must be a boolean"),
		).
		MustBuild(c.u)
}

func (c *catalog) buildFont() *validation.Constraint {
	return validation.NewConstraint("Font").
		AllVersions().
		Require(
			validation.Attribute("family", validation.NonEmpty(), "font family must not be empty"),
			validation.Attribute("size", validation.FloatBetween(1, 512), "font size must be between 1 and 512"),
		).
		Allow(
			validation.Attribute("color", validation.IsColor(), "font color must be a color", validation.Default("#FFFFFFFF")),
			validation.Attribute("weight", validation.OneOf("THIN", "LIGHT", "NORMAL", "MEDIUM", "BOLD", "BLACK"), "unknown font weight"),
			validation.ChildElement("Template", c.template, validation.Occurs(0, 1)),
		).
		MustBuild(c.u)
}

func (c *catalog) buildTemplate() *validation.Constraint {
	return validation.NewConstraint("Template").
		AllVersions().
		Require(validation.TextContent(validation.NonEmpty(), "template must not be empty")).
		Allow(validation.ChildElement("Parameter", c.parameter, validation.MinOccurs(0))).
		MustBuild(c.u)
}

func (c *catalog) buildParameter() *validation.Constraint {
	return validation.NewConstraint("Parameter").
		AllVersions().
		Require(validation.Attribute("expression", nil, "", validation.CheckedBy(c.expr))).
		MustBuild(c.u)
}

func (c *catalog) buildImage() *validation.Constraint {
	return validation.NewConstraint("Image").
		AllVersions().
		Require(validation.Attribute("resource", validation.NonEmpty(), "image resource must not be empty")).
		MustBuild(c.u)
}

func (c *catalog) buildLine() *validation.Constraint {
	return validation.NewConstraint("Line").
		AllVersions().
		Require(
			validation.Attribute("startX", validation.IsFloat(), "startX must be a number"),
			validation.Attribute("startY", validation.IsFloat(), "startY must be a number"),
			validation.Attribute("endX", validation.IsFloat(), "endX must be a number"),
			validation.Attribute("endY", validation.IsFloat(), "endY must be a number"),
			validation.ChildElement("Stroke", c.stroke, validation.Occurs(1, 1)),
		).
		MustBuild(c.u)
}

func (c *catalog) buildArc() *validation.Constraint {
	return validation.NewConstraint("Arc").
		AllVersions().
		Require(
			validation.Attribute("centerX", validation.IsFloat(), "centerX must be a number"),
			validation.Attribute("centerY", validation.IsFloat(), "centerY must be a number"),
			validation.Attribute("width", validation.IsFloat(), "width must be a number"),
			validation.Attribute("height", validation.IsFloat(), "height must be a number"),
			validation.Attribute("startAngle", validation.IsFloat(), "startAngle must be a number"),
			validation.Attribute("endAngle", validation.IsFloat(), "endAngle must be a number"),
			validation.ChildElement("Stroke", c.stroke, validation.Occurs(1, 1)),
		).
		Allow(validation.Attribute("direction", validation.OneOf("CLOCKWISE", "COUNTER_CLOCKWISE"), "unknown arc direction")).
		MustBuild(c.u)
}

func (c *catalog) buildBox(tag string) func() *validation.Constraint {
	return func() *validation.Constraint {
		return validation.NewConstraint(tag).
			AllVersions().
			Require(bounds()...).
			Require(validation.ChoiceOf([]*validation.ChildRule{
				validation.ChildElement("Fill", c.fill),
				validation.ChildElement("Stroke", c.stroke),
			}, validation.ChoiceOccurs(1, 2),
				validation.ChoiceMessage(tag+" needs a Fill or a Stroke"))).
			MustBuild(c.u)
	}
}

func (c *catalog) buildStroke() *validation.Constraint {
	return validation.NewConstraint("Stroke").
		AllVersions().
		Require(
			validation.Attribute("color", validation.IsColor(), "stroke color must be a color"),
			validation.Attribute("thickness", validation.FloatBetween(0, 512), "thickness must be a non-negative number"),
		).
		Allow(validation.Attribute("cap", validation.OneOf("BUTT", "ROUND", "SQUARE"), "unknown stroke cap", validation.Default("BUTT"))).
		MustBuild(c.u)
}

func (c *catalog) buildFill() *validation.Constraint {
	return validation.NewConstraint("Fill").
		AllVersions().
		Require(validation.Attribute("color", validation.IsColor(), "fill color must be a color")).
		MustBuild(c.u)
}
