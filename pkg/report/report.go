// Package report turns validation outcomes into text, JSON and Markdown
// reports for the CLI and the MCP server.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/ormasoftchile/wffcheck/pkg/validation"
)

// Finding is one validation error, flattened for output.
type Finding struct {
	Kind    string `json:"kind" jsonschema:"required"`
	Path    string `json:"path" jsonschema:"required"`
	Message string `json:"message" jsonschema:"required"`
}

// VersionResult is the verdict for one targeted version.
type VersionResult struct {
	Version  int       `json:"version"`
	Valid    bool      `json:"valid"`
	Findings []Finding `json:"findings,omitempty"`
}

// File is the report for one document.
type File struct {
	Path string `json:"path"`
	// Outcome is success, partial-success or failure over the targets.
	Outcome  string          `json:"outcome" jsonschema:"enum=success,enum=partial-success,enum=failure,enum=error"`
	Valid    []int           `json:"valid_versions"`
	Global   []Finding       `json:"global,omitempty"`
	Versions []VersionResult `json:"versions,omitempty"`
	// Error is set when the document could not be read or parsed.
	Error string `json:"error,omitempty"`
}

// OK reports whether the document is valid for at least one target.
func (f File) OK() bool { return f.Error == "" && len(f.Valid) > 0 }

// Report collects the files checked in one run.
type Report struct {
	RunID   string `json:"run_id"`
	Targets []int  `json:"targets"`
	Files   []File `json:"files"`
}

// New starts a report for a run targeting targets.
func New(targets validation.VersionSet) *Report {
	return &Report{RunID: uuid.NewString(), Targets: ints(targets), Files: []File{}}
}

// Add appends a file report.
func (r *Report) Add(f File) { r.Files = append(r.Files, f) }

// OK reports whether every file is valid for at least one target.
func (r *Report) OK() bool {
	for _, f := range r.Files {
		if !f.OK() {
			return false
		}
	}
	return true
}

// Build summarises out for the targeted versions. Findings recorded for
// versions outside targets are left out.
func Build(path string, out validation.Outcome, targets validation.VersionSet) File {
	valid := out.ValidVersions().Intersect(targets)
	f := File{
		Path:    path,
		Outcome: outcomeKind(valid, targets).String(),
		Valid:   ints(valid),
		Global:  findings(out.ErrorsFor(validation.GlobalKey)),
	}
	for _, v := range targets.Slice() {
		f.Versions = append(f.Versions, VersionResult{
			Version:  int(v),
			Valid:    valid.Contains(v),
			Findings: findings(out.ErrorsFor(validation.KeyOf(v))),
		})
	}
	return f
}

// Failed reports a document that could not be validated at all.
func Failed(path string, err error) File {
	return File{Path: path, Outcome: "error", Valid: []int{}, Error: err.Error()}
}

func outcomeKind(valid, targets validation.VersionSet) validation.OutcomeKind {
	switch {
	case valid.Empty():
		return validation.Failure
	case valid.Equal(targets):
		return validation.Success
	default:
		return validation.PartialSuccess
	}
}

func findings(errs []validation.ValidationError) []Finding {
	if len(errs) == 0 {
		return nil
	}
	out := make([]Finding, len(errs))
	for i, e := range errs {
		out[i] = Finding{Kind: string(e.Kind()), Path: validation.FormatPath(e.Path()), Message: e.Message()}
	}
	return out
}

func ints(vs validation.VersionSet) []int {
	out := make([]int, 0, vs.Len())
	for _, v := range vs.Slice() {
		out = append(out, int(v))
	}
	return out
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// GenerateJSONSchema produces the JSON Schema of the JSON report.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Report{})
	s.ID = "https://github.com/ormasoftchile/wffcheck/schemas/report-v1.json"
	s.Title = "wffcheck report"
	s.Description = "Per-version validation results for watch face documents"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report schema: %w", err)
	}
	return data, nil
}
