package validation

import (
	"fmt"
	"strings"
)

// ErrorKind names a ValidationError variant.
type ErrorKind string

const (
	KindIllegalTag                   ErrorKind = "illegal-tag"
	KindTagOccurrence                ErrorKind = "tag-occurrence"
	KindIllegalAttribute             ErrorKind = "illegal-attribute"
	KindRequiredConditionFailed      ErrorKind = "required-condition-failed"
	KindExpressionSyntax             ErrorKind = "expression-syntax"
	KindExpressionVersionElimination ErrorKind = "expression-version-elimination"
	KindVersionElimination           ErrorKind = "version-elimination"
	KindAttributeValue               ErrorKind = "attribute-value"
	KindContent                      ErrorKind = "content"
	KindUnknown                      ErrorKind = "unknown"
)

// ValidationError is a document-level finding. The set of implementations is
// closed: IllegalTag, TagOccurrence, IllegalAttribute, RequiredConditionFailed,
// ExpressionSyntaxError, ExpressionVersionElimination, VersionElimination,
// AttributeValue, Content and Unknown.
type ValidationError interface {
	error
	Kind() ErrorKind
	// Path is the tag names from the document root to the offending node.
	Path() []string
	// Message is the human readable finding without location.
	Message() string

	validationError()
}

// IllegalTag reports a child element no applicable rule declares.
type IllegalTag struct {
	Tag         string
	ElementPath []string
}

// TagOccurrence reports a child count outside the declared bounds.
// Max is Unbounded when there is no upper limit.
type TagOccurrence struct {
	Tag         string
	Actual      int
	Min         int
	Max         int
	Text        string
	ElementPath []string
}

// IllegalAttribute reports an attribute no applicable rule declares.
type IllegalAttribute struct {
	Name        string
	ElementPath []string
}

// RequiredConditionFailed reports a required condition or an absent
// required attribute, child or content.
type RequiredConditionFailed struct {
	Text        string
	ElementPath []string
}

// ExpressionSyntaxError reports an expression that does not parse or
// references unknown data sources or functions.
type ExpressionSyntaxError struct {
	Expression  string
	Text        string
	ElementPath []string
}

// ExpressionVersionElimination reports an expression resource only
// available in some versions.
type ExpressionVersionElimination struct {
	Resource    string
	Permitted   VersionSet
	ElementPath []string
}

// VersionElimination reports a feature used outside the versions that allow it.
type VersionElimination struct {
	Text        string
	Permitted   VersionSet
	ElementPath []string
}

// AttributeValue reports an attribute whose value fails its rule.
type AttributeValue struct {
	Name        string
	Value       string
	Text        string
	ElementPath []string
}

// Content reports element text that fails its rule.
type Content struct {
	Content     string
	Text        string
	ElementPath []string
}

// Unknown carries findings that fit no other variant.
type Unknown struct {
	Text        string
	ElementPath []string
}

func (IllegalTag) Kind() ErrorKind                   { return KindIllegalTag }
func (TagOccurrence) Kind() ErrorKind                { return KindTagOccurrence }
func (IllegalAttribute) Kind() ErrorKind             { return KindIllegalAttribute }
func (RequiredConditionFailed) Kind() ErrorKind      { return KindRequiredConditionFailed }
func (ExpressionSyntaxError) Kind() ErrorKind        { return KindExpressionSyntax }
func (ExpressionVersionElimination) Kind() ErrorKind { return KindExpressionVersionElimination }
func (VersionElimination) Kind() ErrorKind           { return KindVersionElimination }
func (AttributeValue) Kind() ErrorKind               { return KindAttributeValue }
func (Content) Kind() ErrorKind                      { return KindContent }
func (Unknown) Kind() ErrorKind                      { return KindUnknown }

func (e IllegalTag) Path() []string                   { return e.ElementPath }
func (e TagOccurrence) Path() []string                { return e.ElementPath }
func (e IllegalAttribute) Path() []string             { return e.ElementPath }
func (e RequiredConditionFailed) Path() []string      { return e.ElementPath }
func (e ExpressionSyntaxError) Path() []string        { return e.ElementPath }
func (e ExpressionVersionElimination) Path() []string { return e.ElementPath }
func (e VersionElimination) Path() []string           { return e.ElementPath }
func (e AttributeValue) Path() []string               { return e.ElementPath }
func (e Content) Path() []string                      { return e.ElementPath }
func (e Unknown) Path() []string                      { return e.ElementPath }

func (IllegalTag) validationError()                   {}
func (TagOccurrence) validationError()                {}
func (IllegalAttribute) validationError()             {}
func (RequiredConditionFailed) validationError()      {}
func (ExpressionSyntaxError) validationError()        {}
func (ExpressionVersionElimination) validationError() {}
func (VersionElimination) validationError()           {}
func (AttributeValue) validationError()               {}
func (Content) validationError()                      {}
func (Unknown) validationError()                      {}

func (e IllegalTag) Message() string {
	return fmt.Sprintf("element <%s> is not allowed here", e.Tag)
}

func (e TagOccurrence) Message() string {
	if e.Text != "" {
		return fmt.Sprintf("%s (found %d, expected %s)", e.Text, e.Actual, occursRange(e.Min, e.Max))
	}
	return fmt.Sprintf("<%s> occurs %d time(s), expected %s", e.Tag, e.Actual, occursRange(e.Min, e.Max))
}

func (e IllegalAttribute) Message() string {
	return fmt.Sprintf("attribute %q is not allowed here", e.Name)
}

func (e RequiredConditionFailed) Message() string { return e.Text }

func (e ExpressionSyntaxError) Message() string {
	return fmt.Sprintf("invalid expression %q: %s", e.Expression, e.Text)
}

func (e ExpressionVersionElimination) Message() string {
	return fmt.Sprintf("%s is only available in versions %s", e.Resource, e.Permitted)
}

func (e VersionElimination) Message() string {
	return fmt.Sprintf("%s (permitted in versions %s)", e.Text, e.Permitted)
}

func (e AttributeValue) Message() string {
	return fmt.Sprintf("attribute %s=%q: %s", e.Name, e.Value, e.Text)
}

func (e Content) Message() string {
	return fmt.Sprintf("content %q: %s", strings.TrimSpace(e.Content), e.Text)
}

func (e Unknown) Message() string { return e.Text }

func (e IllegalTag) Error() string                   { return located(e) }
func (e TagOccurrence) Error() string                { return located(e) }
func (e IllegalAttribute) Error() string             { return located(e) }
func (e RequiredConditionFailed) Error() string      { return located(e) }
func (e ExpressionSyntaxError) Error() string        { return located(e) }
func (e ExpressionVersionElimination) Error() string { return located(e) }
func (e VersionElimination) Error() string           { return located(e) }
func (e AttributeValue) Error() string               { return located(e) }
func (e Content) Error() string                      { return located(e) }
func (e Unknown) Error() string                      { return located(e) }

// FormatPath renders an element path as "WatchFace/Scene/Group".
func FormatPath(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	return strings.Join(path, "/")
}

func located(e ValidationError) string {
	return fmt.Sprintf("[%s] %s at %s", e.Kind(), e.Message(), FormatPath(e.Path()))
}

func occursRange(min, max int) string {
	if max == Unbounded {
		return fmt.Sprintf("at least %d", min)
	}
	if min == max {
		return fmt.Sprintf("exactly %d", min)
	}
	return fmt.Sprintf("between %d and %d", min, max)
}
