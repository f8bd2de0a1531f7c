//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/ormasoftchile/wffcheck/pkg/config"
	"github.com/ormasoftchile/wffcheck/pkg/report"
)

func main() {
	if err := os.MkdirAll("schemas", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	for _, s := range []struct {
		file     string
		generate func() ([]byte, error)
	}{
		{"schemas/wffcheck-config.json", config.GenerateJSONSchema},
		{"schemas/wffcheck-report.json", report.GenerateJSONSchema},
	} {
		data, err := s.generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error generating %s: %v\n", s.file, err)
			os.Exit(1)
		}
		if err := os.WriteFile(s.file, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote", s.file)
	}
}
