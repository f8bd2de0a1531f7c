package validation

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ormasoftchile/wffcheck/pkg/element"
)

// Common value predicates for rule catalogues.

// AnyValue accepts every value.
func AnyValue() ValuePredicate {
	return func(string, *Context) bool { return true }
}

// NonEmpty accepts values with at least one non-space character.
func NonEmpty() ValuePredicate {
	return func(v string, _ *Context) bool { return strings.TrimSpace(v) != "" }
}

// IsInteger accepts base-10 integers.
func IsInteger() ValuePredicate {
	return func(v string, _ *Context) bool {
		_, err := strconv.Atoi(strings.TrimSpace(v))
		return err == nil
	}
}

// IsFloat accepts decimal numbers.
func IsFloat() ValuePredicate {
	return func(v string, _ *Context) bool {
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	}
}

// IntBetween accepts integers in [lo, hi].
func IntBetween(lo, hi int) ValuePredicate {
	return func(v string, _ *Context) bool {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return err == nil && n >= lo && n <= hi
	}
}

// FloatBetween accepts numbers in [lo, hi].
func FloatBetween(lo, hi float64) ValuePredicate {
	return func(v string, _ *Context) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && f >= lo && f <= hi
	}
}

// IsBool accepts "true" and "false".
func IsBool() ValuePredicate {
	return OneOf("true", "false")
}

// OneOf accepts exactly one of the listed values.
func OneOf(values ...string) ValuePredicate {
	return func(v string, _ *Context) bool { return slices.Contains(values, v) }
}

// Matches accepts values matching the regular expression pattern.
// The pattern is compiled once; an invalid pattern panics at catalogue build.
func Matches(pattern string) ValuePredicate {
	re := regexp.MustCompile(pattern)
	return func(v string, _ *Context) bool { return re.MatchString(v) }
}

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// IsColor accepts #RRGGBB and #AARRGGBB colors and [CONFIGURATION.x]
// references to user configured colors.
func IsColor() ValuePredicate {
	return func(v string, _ *Context) bool {
		return colorPattern.MatchString(v) || strings.HasPrefix(v, "[CONFIGURATION.")
	}
}

// HasChild reports whether the element has a child with tag.
func HasChild(tag string) ElementPredicate {
	return func(el *element.Element, _ *Context) bool {
		return len(el.ChildrenByTag(tag)) > 0
	}
}

// HasAttribute reports whether the element carries attribute name.
func HasAttribute(name string) ElementPredicate {
	return func(el *element.Element, _ *Context) bool { return el.HasAttr(name) }
}

// AttributeMatches reports whether attribute name is present and accepted by pred.
func AttributeMatches(name string, pred ValuePredicate) ElementPredicate {
	return func(el *element.Element, ctx *Context) bool {
		v, ok := el.Attr(name)
		return ok && pred(v, ctx)
	}
}

// Not negates an element predicate.
func Not(pred ElementPredicate) ElementPredicate {
	return func(el *element.Element, ctx *Context) bool { return !pred(el, ctx) }
}
