package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ormasoftchile/wffcheck/pkg/metrics"
	"github.com/ormasoftchile/wffcheck/pkg/report"
	"github.com/ormasoftchile/wffcheck/pkg/runner"
	"github.com/ormasoftchile/wffcheck/pkg/watch"
	"github.com/spf13/cobra"
)

var (
	watchDebounce    time.Duration
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [face.xml...]",
	Short: "Re-validate documents whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var opts []runner.Option
	if watchMetricsAddr != "" {
		mc := metrics.NewCollector(nil)
		opts = append(opts, runner.WithMetrics(mc))
		stop := serveMetrics(watchMetricsAddr, mc)
		defer stop()
	}
	r, err := runner.New(cfg, opts...)
	if err != nil {
		return err
	}
	w, err := watch.New(args, watchDebounce)
	if err != nil {
		return err
	}

	rep, err := r.CheckFiles(ctx, args)
	if err != nil {
		return err
	}
	var mu sync.Mutex
	if err := writeReport(cmd.OutOrStdout(), rep, cfg.Format); err != nil {
		return err
	}

	return w.Run(ctx, func(path string) {
		rep := report.New(r.Targets())
		rep.Add(r.CheckFile(path))

		mu.Lock()
		defer mu.Unlock()
		if err := writeReport(cmd.OutOrStdout(), rep, cfg.Format); err != nil {
			slog.Error("write report", "path", path, "error", err)
		}
	})
}

// serveMetrics exposes mc on addr until the returned func is called.
func serveMetrics(addr string, mc *metrics.Collector) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mc.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
