// Package catalog holds the watch face rule catalogue: one constraint per
// element of the format, scoped to the format versions that introduced
// each feature. Everything is declared through the validation builder.
package catalog

import (
	"github.com/ormasoftchile/wffcheck/pkg/expression"
	"github.com/ormasoftchile/wffcheck/pkg/validation"
)

// Universe is the range of watch face format versions the catalogue covers.
var Universe = validation.MustVersionRange(1, 4)

// Option configures the catalogue.
type Option func(*catalog)

// WithExpressionTable checks expressions against t instead of the
// built-in data source table.
func WithExpressionTable(t *expression.Table) Option {
	return func(c *catalog) { c.expr = expression.NewChecker(t) }
}

// New returns the watch face specification targeting targets (every
// version of Universe when empty).
func New(targets validation.VersionSet, opts ...Option) (*validation.Specification, error) {
	return validation.NewSpecification(Root(opts...), targets)
}

// Root builds the <WatchFace> constraint and, lazily, everything below it.
func Root(opts ...Option) *validation.Constraint {
	c := &catalog{u: Universe, expr: expression.NewChecker(nil)}
	for _, opt := range opts {
		opt(c)
	}
	c.init()
	return c.watchFace()
}

type catalog struct {
	u    validation.VersionRange
	expr validation.ValueChecker

	metadata, userConfigs, colorConfig, colorOption   validation.ConstraintFactory
	listConfig, listOption, boolConfig                validation.ConstraintFactory
	flavors, flavor, flavorConfig, flavorItem         validation.ConstraintFactory
	scene, group, partText, partImage, partDraw       validation.ConstraintFactory
	text, font, template, parameter, image            validation.ConstraintFactory
	line, arc, rectangle, ellipse, stroke, fill       validation.ConstraintFactory
	variant, transform                                validation.ConstraintFactory
	condition, expressions, expression, compare, dflt validation.ConstraintFactory
}

// ref defers reading a factory field until the factory is called, which
// lets constraints refer to each other recursively.
func ref(f *validation.ConstraintFactory) validation.ConstraintFactory {
	return func() *validation.Constraint { return (*f)() }
}

func (c *catalog) init() {
	c.metadata = validation.Lazy(c.buildMetadata)
	c.userConfigs = validation.Lazy(c.buildUserConfigurations)
	c.colorConfig = validation.Lazy(c.buildColorConfiguration)
	c.colorOption = validation.Lazy(c.buildColorOption)
	c.listConfig = validation.Lazy(c.buildListConfiguration)
	c.listOption = validation.Lazy(c.buildListOption)
	c.boolConfig = validation.Lazy(c.buildBooleanConfiguration)
	c.flavors = validation.Lazy(c.buildFlavors)
	c.flavor = validation.Lazy(c.buildFlavor)
	c.flavorConfig = validation.Lazy(c.buildFlavorConfiguration)
	c.flavorItem = validation.Lazy(c.buildFlavorItem)

	c.scene = validation.Lazy(c.buildScene)
	c.group = validation.Lazy(c.buildGroup)
	c.partText = validation.Lazy(c.buildPartText)
	c.partImage = validation.Lazy(c.buildPartImage)
	c.partDraw = validation.Lazy(c.buildPartDraw)
	c.variant = validation.Lazy(c.buildVariant)
	c.transform = validation.Lazy(c.buildTransform)

	c.text = validation.Lazy(c.buildText)
	c.font = validation.Lazy(c.buildFont)
	c.template = validation.Lazy(c.buildTemplate)
	c.parameter = validation.Lazy(c.buildParameter)
	c.image = validation.Lazy(c.buildImage)

	c.line = validation.Lazy(c.buildLine)
	c.arc = validation.Lazy(c.buildArc)
	c.rectangle = validation.Lazy(c.buildBox("Rectangle"))
	c.ellipse = validation.Lazy(c.buildBox("Ellipse"))
	c.stroke = validation.Lazy(c.buildStroke)
	c.fill = validation.Lazy(c.buildFill)

	c.condition = validation.Lazy(c.buildCondition)
	c.expressions = validation.Lazy(c.buildExpressions)
	c.expression = validation.Lazy(c.buildExpression)
	c.compare = validation.Lazy(c.buildBranch("Compare", validation.Attribute("expression", validation.NonEmpty(), "compare must name an expression")))
	c.dflt = validation.Lazy(c.buildBranch("Default"))
}

func (c *catalog) watchFace() *validation.Constraint {
	return validation.NewConstraint("WatchFace").
		AllVersions().
		Require(
			validation.Attribute("width", validation.IntBetween(1, 4096), "width must be a positive integer"),
			validation.Attribute("height", validation.IntBetween(1, 4096), "height must be a positive integer"),
			validation.Attribute("clipShape", validation.OneOf("NONE", "CIRCLE", "RECTANGLE"),
				"clipShape must be NONE, CIRCLE or RECTANGLE", validation.Default("NONE")),
			validation.ChildElement("Scene", c.scene, validation.Occurs(1, 1)),
		).
		Allow(
			validation.ChildElement("Metadata", c.metadata),
			validation.ChildElement("UserConfigurations", c.userConfigs, validation.Occurs(0, 1)),
		).
		From(2).
		Allow(
			validation.ChildElement("Flavors", c.flavors, validation.Occurs(0, 1)),
			validation.Satisfies(validation.AttributeMatches("clipShape", validation.OneOf("RECTANGLE")),
				"clipShape RECTANGLE needs format version 2"),
		).
		MustBuild(c.u)
}

func (c *catalog) buildMetadata() *validation.Constraint {
	return validation.NewConstraint("Metadata").
		AllVersions().
		Require(
			validation.Attribute("key", validation.NonEmpty(), "metadata key must not be empty"),
			validation.Attribute("value", nil, ""),
		).
		MustBuild(c.u)
}

func (c *catalog) buildUserConfigurations() *validation.Constraint {
	return validation.NewConstraint("UserConfigurations").
		AllVersions().
		Require(validation.ChoiceOf([]*validation.ChildRule{
			validation.ChildElement("ColorConfiguration", c.colorConfig),
			validation.ChildElement("ListConfiguration", c.listConfig),
			validation.ChildElement("BooleanConfiguration", c.boolConfig),
		}, validation.ChoiceOccurs(1, validation.Unbounded),
			validation.ChoiceMessage("UserConfigurations needs at least one configuration"))).
		MustBuild(c.u)
}

func configurationAttributes() []validation.RuleItem {
	return []validation.RuleItem{
		validation.Attribute("id", validation.Matches(`^[A-Za-z_][A-Za-z0-9_]*$`), "id must be an identifier"),
		validation.Attribute("displayName", validation.NonEmpty(), "displayName must not be empty"),
	}
}

func (c *catalog) buildColorConfiguration() *validation.Constraint {
	return validation.NewConstraint("ColorConfiguration").
		AllVersions().
		Require(configurationAttributes()...).
		Require(validation.ChildElement("ColorOption", c.colorOption)).
		Allow(
			validation.Attribute("defaultValue", validation.NonEmpty(), "defaultValue must name an option"),
			validation.Attribute("icon", nil, ""),
		).
		MustBuild(c.u)
}

func (c *catalog) buildColorOption() *validation.Constraint {
	return validation.NewConstraint("ColorOption").
		AllVersions().
		Require(
			validation.Attribute("id", validation.NonEmpty(), "option id must not be empty"),
			validation.Attribute("colors", validation.Matches(`^#[0-9a-fA-F]{6,8}( +#[0-9a-fA-F]{6,8})*$`),
				"colors must be a space separated list of #RRGGBB or #AARRGGBB values"),
		).
		Allow(
			validation.Attribute("displayName", nil, ""),
			validation.Attribute("icon", nil, ""),
		).
		MustBuild(c.u)
}

func (c *catalog) buildListConfiguration() *validation.Constraint {
	return validation.NewConstraint("ListConfiguration").
		AllVersions().
		Require(configurationAttributes()...).
		Require(validation.ChildElement("ListOption", c.listOption)).
		Allow(
			validation.Attribute("defaultValue", validation.NonEmpty(), "defaultValue must name an option"),
			validation.Attribute("icon", nil, ""),
		).
		MustBuild(c.u)
}

func (c *catalog) buildListOption() *validation.Constraint {
	return validation.NewConstraint("ListOption").
		AllVersions().
		Require(validation.Attribute("id", validation.NonEmpty(), "option id must not be empty")).
		Allow(
			validation.Attribute("displayName", nil, ""),
			validation.Attribute("icon", nil, ""),
		).
		MustBuild(c.u)
}

func (c *catalog) buildBooleanConfiguration() *validation.Constraint {
	return validation.NewConstraint("BooleanConfiguration").
		AllVersions().
		Require(configurationAttributes()...).
		Require(validation.Attribute("defaultValue", validation.OneOf("TRUE", "FALSE"), "defaultValue must be TRUE or FALSE")).
		Allow(validation.Attribute("icon", nil, "")).
		MustBuild(c.u)
}

func (c *catalog) buildFlavors() *validation.Constraint {
	return validation.NewConstraint("Flavors").
		AllVersions().
		Require(validation.ChildElement("Flavor", c.flavor, validation.Occurs(1, 20))).
		MustBuild(c.u)
}

func (c *catalog) buildFlavor() *validation.Constraint {
	return validation.NewConstraint("Flavor").
		AllVersions().
		Require(validation.Attribute("id", validation.NonEmpty(), "flavor id must not be empty")).
		Allow(validation.ChildElement("Configuration", c.flavorConfig, validation.Occurs(0, 1))).
		MustBuild(c.u)
}

func (c *catalog) buildFlavorConfiguration() *validation.Constraint {
	return validation.NewConstraint("Configuration").
		AllVersions().
		Allow(validation.ChildElement("Item", c.flavorItem)).
		MustBuild(c.u)
}

func (c *catalog) buildFlavorItem() *validation.Constraint {
	return validation.NewConstraint("Item").
		AllVersions().
		Require(
			validation.Attribute("id", validation.NonEmpty(), "item id must not be empty"),
			validation.Attribute("value", nil, ""),
		).
		MustBuild(c.u)
}
