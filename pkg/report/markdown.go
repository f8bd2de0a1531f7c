package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders r as a Markdown document with one section per file.
func Markdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# wffcheck report\n\nTargets: %s\n\n", formatVersions(r.Targets))

	for _, f := range r.Files {
		fmt.Fprintf(&b, "## `%s`\n\n", f.Path)
		if f.Error != "" {
			fmt.Fprintf(&b, "**error**: %s\n\n", escapeCell(f.Error))
			continue
		}
		fmt.Fprintf(&b, "**%s**, valid for %s\n\n", f.Outcome, formatVersions(f.Valid))

		rows := fileRows(f)
		if len(rows) == 0 {
			continue
		}
		b.WriteString("| Version | Kind | Path | Message |\n|---|---|---|---|\n")
		for _, rw := range rows {
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n", rw.label, rw.f.Kind, rw.f.Path, escapeCell(rw.f.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkdown styles md for a terminal. width 0 disables wrapping.
func RenderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
