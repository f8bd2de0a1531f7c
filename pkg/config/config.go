// Package config loads wffcheck settings from .wffcheck.yaml.
//
// Loading runs three phases, like the document pipeline: a strict YAML
// decode, a JSON Schema check against the schema generated from Config,
// then Go rules that need the catalogue's version universe.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/ormasoftchile/wffcheck/pkg/validation"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file Discover looks for.
const FileName = ".wffcheck.yaml"

// ErrInvalidConfig wraps every schema or domain rule violation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Versions is the window of format versions to target.
type Versions struct {
	Min int `yaml:"min" json:"min" jsonschema:"minimum=1"`
	Max int `yaml:"max" json:"max" jsonschema:"minimum=1"`
}

// Config holds the settings shared by the CLI and the MCP server.
type Config struct {
	Versions Versions `yaml:"versions" json:"versions" jsonschema:"description=Format versions to target when targets is empty"`
	// Targets lists explicit versions and overrides Versions when set.
	Targets    []int  `yaml:"targets,omitempty" json:"targets,omitempty" jsonschema:"uniqueItems=true"`
	CollectAll bool   `yaml:"collect_all,omitempty" json:"collect_all,omitempty" jsonschema:"description=Keep walking after every version is excluded"`
	Format     string `yaml:"format,omitempty" json:"format,omitempty" jsonschema:"enum=text,enum=json,enum=markdown"`
	// Workers bounds concurrent validations; 0 means one per CPU.
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty" jsonschema:"minimum=0"`
	// ExpressionTable is a YAML table replacing the built-in data sources,
	// relative to the configuration file.
	ExpressionTable string `yaml:"expression_table,omitempty" json:"expression_table,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default(u validation.VersionRange) *Config {
	return &Config{
		Versions: Versions{Min: int(u.Min), Max: int(u.Max)},
		Format:   "text",
	}
}

// LoadFile reads the configuration at path. A relative ExpressionTable is
// resolved against the file's directory.
func LoadFile(path string, u validation.VersionRange) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Load(f, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.ExpressionTable != "" && !filepath.IsAbs(cfg.ExpressionTable) {
		cfg.ExpressionTable = filepath.Join(filepath.Dir(path), cfg.ExpressionTable)
	}
	slog.Debug("config loaded", "path", path, "targets", cfg.Targets, "min", cfg.Versions.Min, "max", cfg.Versions.Max)
	return cfg, nil
}

// Load decodes a configuration over the defaults for u and validates it.
// Unknown keys are errors.
func Load(r io.Reader, u validation.VersionRange) (*Config, error) {
	cfg := Default(u)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validateSchema(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(u); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover walks from dir up to the filesystem root and returns the first
// configuration file found, or "" when there is none.
func Discover(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("discover config: %w", err)
	}
	for {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("discover config: %w", err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate applies the rules the schema cannot express.
func (c *Config) Validate(u validation.VersionRange) error {
	var problems []string
	if c.Versions.Min > c.Versions.Max {
		problems = append(problems, fmt.Sprintf("versions.min %d is greater than versions.max %d", c.Versions.Min, c.Versions.Max))
	}
	if !u.Contains(validation.Version(c.Versions.Min)) || !u.Contains(validation.Version(c.Versions.Max)) {
		problems = append(problems, fmt.Sprintf("versions %d..%d outside supported %s", c.Versions.Min, c.Versions.Max, u))
	}
	for _, t := range c.Targets {
		if !u.Contains(validation.Version(t)) {
			problems = append(problems, fmt.Sprintf("target %d outside supported %s", t, u))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// TargetSet returns the versions to report on.
func (c *Config) TargetSet() validation.VersionSet {
	if len(c.Targets) > 0 {
		vs := make([]validation.Version, 0, len(c.Targets))
		for _, t := range c.Targets {
			vs = append(vs, validation.Version(t))
		}
		return validation.NewVersionSet(vs...)
	}
	return validation.VersionsBetween(validation.Version(c.Versions.Min), validation.Version(c.Versions.Max))
}

// GenerateJSONSchema produces the JSON Schema of the configuration file.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Config{})
	s.ID = "https://github.com/ormasoftchile/wffcheck/schemas/config-v1.json"
	s.Title = "wffcheck configuration"
	s.Description = "Schema for .wffcheck.yaml"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal config schema: %w", err)
	}
	return data, nil
}

func validateSchema(cfg *Config) error {
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return err
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal config schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("config-v1.json", schemaDoc); err != nil {
		return fmt.Errorf("add config schema: %w", err)
	}
	sch, err := c.Compile("config-v1.json")
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		var ve *sjsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		var msgs []string
		for _, cause := range leafCauses(ve) {
			msgs = append(msgs, fmt.Sprintf("/%s: %v", strings.Join(cause.InstanceLocation, "/"), cause.ErrorKind))
		}
		slices.Sort(msgs)
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

func leafCauses(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, leafCauses(cause)...)
	}
	return flat
}
