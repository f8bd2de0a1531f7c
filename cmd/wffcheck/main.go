package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ormasoftchile/wffcheck/pkg/catalog"
	"github.com/ormasoftchile/wffcheck/pkg/config"
	"github.com/ormasoftchile/wffcheck/pkg/report"
	"github.com/ormasoftchile/wffcheck/pkg/runner"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var (
	flagConfig     string
	flagVerbose    bool
	flagFormat     string
	flagRender     bool
	flagCollectAll bool
	flagMinVersion int
	flagMaxVersion int
	flagTargets    []int
	flagWorkers    int
)

var rootCmd = &cobra.Command{
	Use:   "wffcheck",
	Short: "Watch face document validator",
	Long: "wffcheck checks watch face documents against every watch face format version at once\n" +
		"and reports which versions each document is valid for, and why the others are not.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [face.xml...]",
	Short: "Validate watch face documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := runner.New(cfg)
	if err != nil {
		return err
	}

	rep, err := r.CheckFiles(cmd.Context(), args)
	if err != nil {
		return err
	}
	if err := writeReport(cmd.OutOrStdout(), rep, cfg.Format); err != nil {
		return err
	}
	if !rep.OK() {
		failed := 0
		for _, f := range rep.Files {
			if !f.OK() {
				failed++
			}
		}
		return fmt.Errorf("%d of %d file(s) not valid for any targeted version", failed, len(rep.Files))
	}
	return nil
}

// loadConfig reads --config, or the nearest .wffcheck.yaml, and applies
// the flags the user set on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := flagConfig
	if path == "" {
		found, err := config.Discover(".")
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := config.Default(catalog.Universe)
	if path != "" {
		loaded, err := config.LoadFile(path, catalog.Universe)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = flagFormat
	}
	if flags.Changed("collect-all") {
		cfg.CollectAll = flagCollectAll
	}
	if flags.Changed("min-version") {
		cfg.Versions.Min = flagMinVersion
	}
	if flags.Changed("max-version") {
		cfg.Versions.Max = flagMaxVersion
	}
	if flags.Changed("target") {
		cfg.Targets = flagTargets
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	switch cfg.Format {
	case "text", "json", "markdown":
	default:
		return nil, fmt.Errorf("unknown --format %q: use text, json or markdown", cfg.Format)
	}
	if err := cfg.Validate(catalog.Universe); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeReport(w io.Writer, rep *report.Report, format string) error {
	switch format {
	case "json":
		return report.WriteJSON(w, rep)
	case "markdown":
		md := report.Markdown(rep)
		if flagRender {
			out, err := report.RenderMarkdown(md, 0)
			if err != nil {
				return err
			}
			md = out
		}
		_, err := io.WriteString(w, md)
		return err
	default:
		return report.WriteText(w, rep)
	}
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Report format: text, json or markdown")
	cmd.Flags().BoolVar(&flagRender, "render", false, "Style markdown output for the terminal")
	cmd.Flags().BoolVar(&flagCollectAll, "collect-all", false, "Keep walking after every version is excluded")
	cmd.Flags().IntVar(&flagMinVersion, "min-version", int(catalog.Universe.Min), "Oldest format version to target")
	cmd.Flags().IntVar(&flagMaxVersion, "max-version", int(catalog.Universe.Max), "Newest format version to target")
	cmd.Flags().IntSliceVar(&flagTargets, "target", nil, "Target only these versions (repeatable, overrides the version window)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Concurrent validations (0: one per CPU)")
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:       "export [config|report]",
	Short:     "Export a JSON Schema to stdout (config by default)",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"config", "report"},
	RunE:      runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	generate := config.GenerateJSONSchema
	if len(args) == 1 && args[0] == "report" {
		generate = report.GenerateJSONSchema
	}
	data, err := generate()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("generate schema: invalid JSON")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wffcheck %s (build: %s, formats %s)\n", version, commit, catalog.Universe)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to .wffcheck.yaml (default: nearest one above the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")

	addCheckFlags(validateCmd)
	addCheckFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Coalesce change bursts for this long (default 150ms)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
