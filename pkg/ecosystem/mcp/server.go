// Package mcp exposes wffcheck as Model Context Protocol tools so agents
// can validate watch faces while editing them.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ormasoftchile/wffcheck/pkg/runner"
)

// NewServer creates an MCP server with the wffcheck tools registered.
func NewServer(version string, r *runner.Runner) *server.MCPServer {
	s := server.NewMCPServer(
		"wffcheck",
		version,
		server.WithToolCapabilities(true),
	)
	h := &Handlers{runner: r}

	s.AddTool(
		mcp.NewTool("wffcheck/validate",
			mcp.WithDescription("Validate a watch face document (XML, or YAML element tree) for every targeted format version"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the watch face file")),
			mcp.WithString("format", mcp.Description("Report format: text (default), json or markdown")),
		),
		h.HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("wffcheck/validate-xml",
			mcp.WithDescription("Validate watch face XML passed inline"),
			mcp.WithString("xml", mcp.Required(), mcp.Description("The watch face XML document")),
			mcp.WithString("format", mcp.Description("Report format: text (default), json or markdown")),
		),
		h.HandleValidateXML,
	)

	s.AddTool(
		mcp.NewTool("wffcheck/sources",
			mcp.WithDescription("List the expression data sources and functions with the first format version supporting each"),
		),
		h.HandleSources,
	)

	s.AddTool(
		mcp.NewTool("wffcheck/schema",
			mcp.WithDescription("Export a wffcheck JSON Schema (config or report)"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Schema type: 'config' or 'report'")),
		),
		h.HandleSchema,
	)

	return s
}
