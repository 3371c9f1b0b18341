// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the tschart MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"tschart Chart Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: evaluate_chart ---
	s.AddTool(mcp.NewTool("evaluate_chart",
		mcp.WithDescription("Evaluate a JSON chart definition against the series store and return the chart state."),
		mcp.WithString("chart_definition", mcp.Description("The chart definition as a JSON document."), mcp.Required()),
		mcp.WithString("time_resolution", mcp.Description("Time resolution to display (e.g., '5s', '1 minute'). Defaults to the smallest configured one.")),
		mcp.WithString("last_point_timestamp", mcp.Description("Timestamp of the newest point to display (unix seconds, ISO8601 or 'N [units] ago').")),
	), h.handleEvaluateChart)

	// --- 2. Tool: normalize_dashboard ---
	s.AddTool(mcp.NewTool("normalize_dashboard",
		mcp.WithDescription("Validate a JSON dashboard spec and return it with defaults applied."),
		mcp.WithString("spec", mcp.Description("The dashboard spec as a JSON document."), mcp.Required()),
	), h.handleNormalizeDashboard)

	// --- 3. Tool: list_dashboards ---
	s.AddTool(mcp.NewTool("list_dashboards",
		mcp.WithDescription("List the dashboards saved in the dashboard store."),
	), h.handleListDashboards)

	// --- 4. Tool: get_dashboard ---
	s.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Fetch a saved dashboard spec by name."),
		mcp.WithString("name", mcp.Description("Name of the saved dashboard."), mcp.Required()),
	), h.handleGetDashboard)

	return s
}

// StartMCPServer starts the tschart MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
