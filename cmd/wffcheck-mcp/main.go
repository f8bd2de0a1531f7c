// Package main provides the wffcheck-mcp binary, an MCP server over stdio
// that lets agents validate watch face documents.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ormasoftchile/wffcheck/pkg/catalog"
	"github.com/ormasoftchile/wffcheck/pkg/config"
	wmcp "github.com/ormasoftchile/wffcheck/pkg/ecosystem/mcp"
	"github.com/ormasoftchile/wffcheck/pkg/runner"
)

var version = "dev"

func main() {
	// stdout carries the protocol; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	r, err := newRunner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s := wmcp.NewServer(version, r)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRunner uses WFFCHECK_CONFIG, or the nearest .wffcheck.yaml, or the
// defaults.
func newRunner() (*runner.Runner, error) {
	path := os.Getenv("WFFCHECK_CONFIG")
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
	return runner.New(cfg)
}
