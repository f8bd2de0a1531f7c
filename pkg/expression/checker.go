// Package expression checks watch face expressions such as
// "([HOUR_0_23] * 30) + round([MINUTE] / 2)".
//
// Bracketed data sources are swapped for placeholder identifiers and the
// result is parsed with expr-lang. The syntax tree is then walked to check
// every data source and function against a Table, which also records the
// first format version supporting each of them.
package expression

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/ormasoftchile/wffcheck/pkg/validation"
)

const placeholderPrefix = "wffSource"

// Checker validates expressions. It implements validation.ValueChecker and
// is safe for concurrent use.
type Checker struct {
	table *Table
}

// NewChecker returns a checker backed by t; DefaultTable when t is nil.
func NewChecker(t *Table) *Checker {
	if t == nil {
		t = DefaultTable()
	}
	return &Checker{table: t}
}

// Analysis is what an expression references.
type Analysis struct {
	Sources   []string
	Functions []Call
}

// Call is one function call site.
type Call struct {
	Name string
	Args int
}

// Analyze parses expr and lists the data sources and functions it uses.
func Analyze(expr string) (*Analysis, error) {
	rewritten, sources, err := rewrite(expr)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rewritten) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	tree, err := parser.Parse(rewritten)
	if err != nil {
		return nil, fmt.Errorf("%s", firstLine(err.Error()))
	}

	v := &collector{callees: map[*ast.IdentifierNode]bool{}}
	ast.Walk(&tree.Node, v)

	for _, id := range v.idents {
		if v.callees[id] || isPlaceholder(id.Value, len(sources)) {
			continue
		}
		return nil, fmt.Errorf("unknown identifier %q (data sources are written [NAME])", id.Value)
	}
	return &Analysis{Sources: sources, Functions: v.calls}, nil
}

// CheckValue implements validation.ValueChecker.
func (c *Checker) CheckValue(value string, ctx *validation.Context, versions validation.VersionSet) validation.Outcome {
	u := ctx.Universe()
	syntaxError := func(msg string) validation.Outcome {
		return ctx.Exclude(versions, validation.ExpressionSyntaxError{
			Expression:  value,
			Text:        msg,
			ElementPath: ctx.Path(),
		})
	}

	a, err := Analyze(value)
	if err != nil {
		return syntaxError(err.Error())
	}

	out := validation.SuccessOf(u)
	seen := map[string]bool{}
	for _, name := range a.Sources {
		if seen[name] {
			continue
		}
		seen[name] = true
		s, ok := c.table.source(name)
		if !ok {
			return syntaxError(fmt.Sprintf("unknown data source [%s]", name))
		}
		out = validation.Combine(out, eliminate(ctx, "["+name+"]", s.Since))
	}
	for _, call := range a.Functions {
		f, ok := c.table.function(call.Name)
		if !ok {
			return syntaxError(fmt.Sprintf("unknown function %s()", call.Name))
		}
		if call.Args < f.MinArgs || call.Args > f.MaxArgs {
			return syntaxError(fmt.Sprintf("%s() takes %s, got %d", f.Name, arity(f), call.Args))
		}
		if !seen[f.Name+"()"] {
			seen[f.Name+"()"] = true
			out = validation.Combine(out, eliminate(ctx, f.Name+"()", f.Since))
		}
	}
	return out
}

// eliminate drops the versions older than since.
func eliminate(ctx *validation.Context, resource string, since validation.Version) validation.Outcome {
	u := ctx.Universe()
	permitted := validation.VersionsBetween(max(since, u.Min), u.Max)
	return ctx.RestrictTo(permitted, validation.ExpressionVersionElimination{
		Resource:    resource,
		Permitted:   permitted,
		ElementPath: ctx.Path(),
	})
}

// rewrite replaces [SOURCE] references outside string literals with
// placeholder identifiers and returns the source names in order.
func rewrite(expr string) (string, []string, error) {
	var (
		b       strings.Builder
		sources []string
		quote   rune
	)
	runes := []rune(expr)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			b.WriteRune(r)
			if r == '\\' && i+1 < len(runes) {
				i++
				b.WriteRune(runes[i])
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			b.WriteRune(r)
		case r == '[':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == ']' {
					end = j
					break
				}
			}
			if end < 0 {
				return "", nil, fmt.Errorf("unterminated data source at offset %d", i)
			}
			name := strings.TrimSpace(string(runes[i+1 : end]))
			if name == "" {
				return "", nil, fmt.Errorf("empty data source at offset %d", i)
			}
			fmt.Fprintf(&b, " %s ", placeholder(len(sources)))
			sources = append(sources, name)
			i = end
		case r == ']':
			return "", nil, fmt.Errorf("unexpected ']' at offset %d", i)
		default:
			b.WriteRune(r)
		}
	}
	if quote != 0 {
		return "", nil, fmt.Errorf("unterminated string literal")
	}
	return b.String(), sources, nil
}

type collector struct {
	idents  []*ast.IdentifierNode
	callees map[*ast.IdentifierNode]bool
	calls   []Call
}

func (c *collector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c.idents = append(c.idents, n)
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.callees[id] = true
			c.calls = append(c.calls, Call{Name: id.Value, Args: len(n.Arguments)})
		}
	case *ast.BuiltinNode:
		c.calls = append(c.calls, Call{Name: n.Name, Args: len(n.Arguments)})
	}
}

func placeholder(i int) string {
	return fmt.Sprintf("%s%d", placeholderPrefix, i)
}

func isPlaceholder(name string, n int) bool {
	for i := range n {
		if name == placeholder(i) {
			return true
		}
	}
	return false
}

func arity(f Function) string {
	if f.MinArgs == f.MaxArgs {
		return fmt.Sprintf("%d argument(s)", f.MinArgs)
	}
	return fmt.Sprintf("%d to %d arguments", f.MinArgs, f.MaxArgs)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
