package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ormasoftchile/wffcheck/pkg/config"
	"github.com/ormasoftchile/wffcheck/pkg/element/xmlsource"
	"github.com/ormasoftchile/wffcheck/pkg/report"
	"github.com/ormasoftchile/wffcheck/pkg/runner"
)

// Handlers implements the wffcheck tools on top of a Runner.
type Handlers struct {
	runner *runner.Runner
}

// HandleValidate implements the wffcheck/validate MCP tool.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	format, _ := args["format"].(string)

	rep := report.New(h.runner.Targets())
	rep.Add(h.runner.CheckFile(path))
	return render(rep, format)
}

// HandleValidateXML implements the wffcheck/validate-xml MCP tool.
func (h *Handlers) HandleValidateXML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	src, _ := args["xml"].(string)
	if strings.TrimSpace(src) == "" {
		return errorResult("xml argument is required"), nil
	}
	format, _ := args["format"].(string)

	rep := report.New(h.runner.Targets())
	start := time.Now()
	doc, err := xmlsource.ParseBytes([]byte(src))
	if err != nil {
		rep.Add(report.Failed("<inline>", err))
	} else {
		rep.Add(h.runner.Check("<inline>", doc, start))
	}
	return render(rep, format)
}

// HandleSources implements the wffcheck/sources MCP tool. It lists the
// table the runner validates with, including a configured override.
func (h *Handlers) HandleSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := h.runner.Table()
	var b strings.Builder
	b.WriteString("data sources:\n")
	for _, s := range t.Sources {
		name := "[" + s.Name + "]"
		if s.Prefix {
			name = "[" + s.Name + "*]"
		}
		fmt.Fprintf(&b, "  %-34s since v%d\n", name, s.Since)
	}
	b.WriteString("functions:\n")
	for _, f := range t.Functions {
		fmt.Fprintf(&b, "  %-34s since v%d\n", fmt.Sprintf("%s/%d..%d", f.Name, f.MinArgs, f.MaxArgs), f.Since)
	}
	return textResult(b.String()), nil
}

// HandleSchema implements the wffcheck/schema MCP tool.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	schemaType, _ := args["type"].(string)

	var data []byte
	var err error

	switch schemaType {
	case "config":
		data, err = config.GenerateJSONSchema()
	case "report":
		data, err = report.GenerateJSONSchema()
	default:
		return errorResult(fmt.Sprintf("unknown schema type %q, use 'config' or 'report'", schemaType)), nil
	}

	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// render formats rep; a document that is valid for no target is a tool error.
func render(rep *report.Report, format string) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	switch format {
	case "", "text":
		if err := report.WriteText(&buf, rep); err != nil {
			return errorResult(err.Error()), nil
		}
	case "json":
		if err := report.WriteJSON(&buf, rep); err != nil {
			return errorResult(err.Error()), nil
		}
	case "markdown":
		buf.WriteString(report.Markdown(rep))
	default:
		return errorResult(fmt.Sprintf("unknown format %q, use text, json or markdown", format)), nil
	}

	if !rep.OK() {
		return errorResult(buf.String()), nil
	}
	return textResult(buf.String()), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
