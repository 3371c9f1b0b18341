package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/tschart/core"
	"github.com/huangsam/tschart/core/dashboard"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// dashboardSummary is the list_dashboards entry. Specs are left out to keep the listing small.
type dashboardSummary struct {
	Name      string `json:"name"`
	Version   int    `json:"version"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (h *toolHandler) handleEvaluateChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateView(cfg, request.GetString("time_resolution", ""), request.GetString("last_point_timestamp", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid view parameters: %v", err)), nil
	}

	chart, err := core.ParseChartDefinition([]byte(request.GetString("chart_definition", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid chart definition: %v", err)), nil
	}

	state, err := core.EvaluateChart(ctx, cfg, h.mgr, chart)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(state, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleNormalizeDashboard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec, err := dashboard.Normalize([]byte(request.GetString("spec", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid dashboard: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(spec, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListDashboards(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.dashboardStore()
	if store == nil {
		return mcp.NewToolResultError("dashboard store is not configured"), nil
	}

	records, err := store.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing dashboards failed: %v", err)), nil
	}

	summaries := make([]dashboardSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, dashboardSummary{Name: r.Name, Version: r.Version, UpdatedAt: r.UpdatedAt})
	}

	jsonData, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetDashboard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.dashboardStore()
	if store == nil {
		return mcp.NewToolResultError("dashboard store is not configured"), nil
	}

	name := request.GetString("name", "")
	data, _, _, err := store.Get(name)
	if errors.Is(err, sql.ErrNoRows) {
		return mcp.NewToolResultError(fmt.Sprintf("dashboard %q not found", name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading dashboard failed: %v", err)), nil
	}

	spec, err := dashboard.Normalize(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stored dashboard %q is invalid: %v", name, err)), nil
	}

	jsonData, _ := json.MarshalIndent(spec, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) dashboardStore() contract.DashboardStore {
	if h.mgr == nil {
		return nil
	}
	return h.mgr.GetDashboardStore()
}
