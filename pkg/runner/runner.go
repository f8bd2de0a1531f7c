// Package runner wires configuration, the catalogue and reporting
// together: it loads documents from disk, validates them and collects the
// per-file reports. The CLI and the MCP server both drive it.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ormasoftchile/wffcheck/pkg/catalog"
	"github.com/ormasoftchile/wffcheck/pkg/config"
	"github.com/ormasoftchile/wffcheck/pkg/element"
	"github.com/ormasoftchile/wffcheck/pkg/element/xmlsource"
	"github.com/ormasoftchile/wffcheck/pkg/element/yamlsource"
	"github.com/ormasoftchile/wffcheck/pkg/expression"
	"github.com/ormasoftchile/wffcheck/pkg/metrics"
	"github.com/ormasoftchile/wffcheck/pkg/report"
	"github.com/ormasoftchile/wffcheck/pkg/validation"
	"golang.org/x/sync/errgroup"
)

// Runner validates watch face files with one configuration.
// It is safe for concurrent use.
type Runner struct {
	validator *validation.Validator
	targets   validation.VersionSet
	table     *expression.Table
	workers   int
	metrics   *metrics.Collector
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics records every validation into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) { r.metrics = c }
}

// New builds the catalogue for cfg.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	table := expression.DefaultTable()
	if cfg.ExpressionTable != "" {
		f, err := os.Open(cfg.ExpressionTable)
		if err != nil {
			return nil, fmt.Errorf("open expression table: %w", err)
		}
		table, err = expression.LoadTable(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.ExpressionTable, err)
		}
	}

	targets := cfg.TargetSet()
	spec, err := catalog.New(targets, catalog.WithExpressionTable(table))
	if err != nil {
		return nil, err
	}
	var vopts []validation.Option
	if cfg.CollectAll {
		vopts = append(vopts, validation.CollectAll())
	}

	r := &Runner{
		validator: validation.NewValidator(spec, vopts...),
		targets:   spec.Targets,
		table:     table,
		workers:   cfg.Workers,
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Targets returns the versions reports cover.
func (r *Runner) Targets() validation.VersionSet { return r.targets }

// Table returns the expression table documents are checked against.
func (r *Runner) Table() *expression.Table { return r.table }

// LoadDocument reads an element tree from path: YAML for .yaml and .yml
// files, XML otherwise.
func LoadDocument(path string) (*element.Element, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlsource.LoadFile(path)
	default:
		return xmlsource.ParseFile(path)
	}
}

// CheckFile validates one file. Read and parse failures are reported in
// the returned File rather than as an error.
func (r *Runner) CheckFile(path string) report.File {
	start := time.Now()
	doc, err := LoadDocument(path)
	if err != nil {
		slog.Debug("document not loaded", "path", path, "error", err)
		r.observe("error", nil, time.Since(start))
		return report.Failed(path, err)
	}
	return r.Check(path, doc, start)
}

// Check validates an already loaded document. start is when loading began,
// for the duration metric; the zero time means now.
func (r *Runner) Check(path string, doc *element.Element, start time.Time) report.File {
	if start.IsZero() {
		start = time.Now()
	}
	out := r.validator.Validate(doc)
	f := report.Build(path, out, r.targets)
	r.observe(f.Outcome, out.Errors(), time.Since(start))
	slog.Debug("document validated", "path", path, "outcome", f.Outcome, "valid", f.Valid, "findings", out.Errors().Count())
	return f
}

// CheckFiles validates paths concurrently, at most the configured number
// of workers at a time. Files keep the order of paths.
func (r *Runner) CheckFiles(ctx context.Context, paths []string) (*report.Report, error) {
	files := make([]report.File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files[i] = r.CheckFile(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := report.New(r.targets)
	for _, f := range files {
		rep.Add(f)
	}
	return rep, nil
}

func (r *Runner) observe(outcome string, errs validation.ErrorMap, elapsed time.Duration) {
	if r.metrics != nil {
		r.metrics.Observe(outcome, errs, elapsed)
	}
}
