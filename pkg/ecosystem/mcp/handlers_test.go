package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ormasoftchile/wffcheck/pkg/catalog"
	"github.com/ormasoftchile/wffcheck/pkg/config"
	"github.com/ormasoftchile/wffcheck/pkg/runner"
)

func testHandlers(t *testing.T) *Handlers {
	t.Helper()
	r, err := runner.New(config.Default(catalog.Universe))
	if err != nil {
		t.Fatal(err)
	}
	return &Handlers{runner: r}
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := fn(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func text(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content %T, want TextContent", r.Content[0])
	}
	return tc.Text
}

func TestHandleValidate_MissingPath(t *testing.T) {
	h := testHandlers(t)
	if result := call(t, h.HandleValidate, map[string]any{}); !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestHandleValidate_File(t *testing.T) {
	h := testHandlers(t)
	path := filepath.Join(t.TempDir(), "face.xml")
	if err := os.WriteFile(path, []byte(`<WatchFace width="450" height="450"><Scene/></WatchFace>`), 0o644); err != nil {
		t.Fatal(err)
	}

	result := call(t, h.HandleValidate, map[string]any{"path": path, "format": "json"})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text(t, result))
	}
	if !strings.Contains(text(t, result), `"outcome": "success"`) {
		t.Errorf("report = %s", text(t, result))
	}
}

func TestHandleValidateXML(t *testing.T) {
	h := testHandlers(t)

	result := call(t, h.HandleValidateXML, map[string]any{"xml": `<WatchFace width="450" height="450"><Scene><Sparkle/></Scene></WatchFace>`})
	if !result.IsError {
		t.Error("expected an error result for an invalid face")
	}
	if !strings.Contains(text(t, result), "illegal-tag") {
		t.Errorf("report = %s", text(t, result))
	}

	result = call(t, h.HandleValidateXML, map[string]any{"xml": `<WatchFace`})
	if !result.IsError || !strings.Contains(text(t, result), "error") {
		t.Errorf("malformed xml: %s", text(t, result))
	}
}

func TestHandleValidate_UnknownFormat(t *testing.T) {
	h := testHandlers(t)
	result := call(t, h.HandleValidateXML, map[string]any{"xml": `<WatchFace/>`, "format": "pdf"})
	if !result.IsError {
		t.Error("expected error for unknown format")
	}
}

func TestHandleSources(t *testing.T) {
	h := testHandlers(t)
	out := text(t, call(t, h.HandleSources, map[string]any{}))
	for _, want := range []string{"[WEATHER.*]", "colorRgb/3..3"} {
		if !strings.Contains(out, want) {
			t.Errorf("sources missing %q", want)
		}
	}
}

func TestHandleSources_ConfiguredTable(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "table.yaml")
	content := "sources: [{name: MINUTE_Z, since: 3}]\nfunctions: [{name: pulse, min_args: 1, max_args: 2, since: 2}]\n"
	if err := os.WriteFile(table, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default(catalog.Universe)
	cfg.ExpressionTable = table
	r, err := runner.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	h := &Handlers{runner: r}

	out := text(t, call(t, h.HandleSources, map[string]any{}))
	for _, want := range []string{"[MINUTE_Z]", "since v3", "pulse/1..2"} {
		if !strings.Contains(out, want) {
			t.Errorf("sources missing %q:\n%s", want, out)
		}
	}
	for _, gone := range []string{"[WEATHER.*]", "colorRgb"} {
		if strings.Contains(out, gone) {
			t.Errorf("sources list %q, which the configured table does not define", gone)
		}
	}
}

func TestHandleSchema(t *testing.T) {
	h := testHandlers(t)
	for _, typ := range []string{"config", "report"} {
		if result := call(t, h.HandleSchema, map[string]any{"type": typ}); result.IsError {
			t.Errorf("%s schema: %s", typ, text(t, result))
		}
	}
	if result := call(t, h.HandleSchema, map[string]any{"type": "foo"}); !result.IsError {
		t.Error("expected error for unknown schema type")
	}
}

func TestNewServer(t *testing.T) {
	h := testHandlers(t)
	if s := NewServer("test", h.runner); s == nil {
		t.Fatal("NewServer returned nil")
	}
}
