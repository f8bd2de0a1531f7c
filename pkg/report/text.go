package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	glyphValid   = "✓"
	glyphPartial = "◐"
	glyphInvalid = "✗"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")
)

type styles struct {
	valid, partial, invalid, kind, path, dim lipgloss.Style
}

// newStyles binds the palette to a renderer for w, so color is only
// emitted when w is a terminal.
func newStyles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	return styles{
		valid:   re.NewStyle().Bold(true).Foreground(colorGreen),
		partial: re.NewStyle().Bold(true).Foreground(colorYellow),
		invalid: re.NewStyle().Bold(true).Foreground(colorRed),
		kind:    re.NewStyle().Foreground(colorYellow),
		path:    re.NewStyle().Foreground(colorDim),
		dim:     re.NewStyle().Foreground(colorDim),
	}
}

type row struct {
	label string
	f     Finding
}

// WriteText writes a human readable report: one status line per file
// followed by its findings in aligned columns.
func WriteText(w io.Writer, r *Report) error {
	st := newStyles(w)
	var b strings.Builder
	valid := 0

	for _, f := range r.Files {
		glyph, style := glyphInvalid, st.invalid
		switch {
		case f.Error != "":
		case f.Outcome == "success":
			glyph, style = glyphValid, st.valid
		case f.Outcome == "partial-success":
			glyph, style = glyphPartial, st.partial
		}
		if f.OK() {
			valid++
		}

		fmt.Fprintf(&b, "%s %s  %s", style.Render(glyph), f.Path, style.Render(f.Outcome))
		if f.Error != "" {
			fmt.Fprintf(&b, "\n    %s\n", f.Error)
			continue
		}
		fmt.Fprintf(&b, "  %s\n", st.dim.Render("valid "+formatVersions(f.Valid)))

		rows := fileRows(f)
		labelWidth, kindWidth := 0, 0
		for _, rw := range rows {
			labelWidth = max(labelWidth, runewidth.StringWidth(rw.label))
			kindWidth = max(kindWidth, runewidth.StringWidth(rw.f.Kind))
		}
		for _, rw := range rows {
			fmt.Fprintf(&b, "    %s  %s  %s  %s\n",
				runewidth.FillRight(rw.label, labelWidth),
				st.kind.Render(runewidth.FillRight(rw.f.Kind, kindWidth)),
				st.path.Render(rw.f.Path),
				rw.f.Message)
		}
	}

	fmt.Fprintf(&b, "\n%d file(s), %d valid for some target, %d not (targets %s, run %s)\n",
		len(r.Files), valid, len(r.Files)-valid, formatVersions(r.Targets), r.RunID)
	_, err := io.WriteString(w, b.String())
	return err
}

func fileRows(f File) []row {
	var rows []row
	for _, g := range f.Global {
		rows = append(rows, row{label: "all", f: g})
	}
	for _, v := range f.Versions {
		for _, fd := range v.Findings {
			rows = append(rows, row{label: fmt.Sprintf("v%d", v.Version), f: fd})
		}
	}
	return rows
}

func formatVersions(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
