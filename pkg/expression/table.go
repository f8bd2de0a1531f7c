package expression

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ormasoftchile/wffcheck/pkg/validation"
	"gopkg.in/yaml.v3"
)

//go:embed table.yaml
var defaultTable string

// Source is a data source an expression may read, written [NAME].
// Prefix sources match every name starting with Name, e.g. "WEATHER.".
type Source struct {
	Name   string             `yaml:"name"`
	Prefix bool               `yaml:"prefix"`
	Since  validation.Version `yaml:"since"`
}

// Function is a callable available to expressions.
type Function struct {
	Name    string             `yaml:"name"`
	MinArgs int                `yaml:"min_args"`
	MaxArgs int                `yaml:"max_args"`
	Since   validation.Version `yaml:"since"`
}

// Table lists the data sources and functions expressions may use.
type Table struct {
	Sources   []Source   `yaml:"sources"`
	Functions []Function `yaml:"functions"`
}

// LoadTable decodes a table, rejecting unknown fields.
func LoadTable(r io.Reader) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode expression table: %w", err)
	}
	for _, f := range t.Functions {
		if f.MinArgs < 0 || f.MaxArgs < f.MinArgs {
			return nil, fmt.Errorf("decode expression table: function %s: bad arity %d..%d", f.Name, f.MinArgs, f.MaxArgs)
		}
	}
	return &t, nil
}

var defaultOnce = sync.OnceValue(func() *Table {
	t, err := LoadTable(strings.NewReader(defaultTable))
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTable returns the built-in table of watch face data sources and functions.
func DefaultTable() *Table { return defaultOnce() }

// source returns the entry matching name; exact names win over prefixes.
func (t *Table) source(name string) (Source, bool) {
	for _, s := range t.Sources {
		if !s.Prefix && s.Name == name {
			return s, true
		}
	}
	for _, s := range t.Sources {
		if s.Prefix && strings.HasPrefix(name, s.Name) && len(name) > len(s.Name) {
			return s, true
		}
	}
	return Source{}, false
}

func (t *Table) function(name string) (Function, bool) {
	for _, f := range t.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}
