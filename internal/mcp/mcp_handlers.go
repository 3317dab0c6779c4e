package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/csalatca/zproj/core"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.VolumeStore
	mgr     contract.StoreManager
}

func (h *toolHandler) handleProjectZStack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputDir = request.GetString("input_dir", "")
	if m := request.GetString("mode", ""); m != "" {
		cfg.Mode = schema.ProjectionMode(m)
	}
	if z := request.GetInt("z_range", 0); z > 0 {
		cfg.ZRange = z
	}
	cfg.DryRun = request.GetBool("dry_run", false)

	output, err := core.RunProject(core.WithSuppressHeader(ctx), cfg, h.store, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("projection failed: %v", err)), nil
	}

	enriched := schema.EnrichReports(output.Reports)
	jsonData, _ := json.MarshalIndent(enriched, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleEvaluateMasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.RefDir = request.GetString("ref_dir", "")
	cfg.SegDir = request.GetString("seg_dir", "")

	if err := contract.RevalidateEvaluate(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid evaluation parameters: %v", err)), nil
	}

	output, err := core.RunEvaluate(core.WithSuppressHeader(ctx), cfg, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleInspectFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputDir = request.GetString("input_dir", "")
	fileName := request.GetString("file", "")

	result, err := core.RunInspect(core.WithSuppressHeader(ctx), cfg, h.store, fileName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
