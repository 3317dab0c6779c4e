// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/csalatca/zproj/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the zproj MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.VolumeStore, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Z-Projection Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
		mgr:     mgr,
	}

	// --- 1. Tool: project_zstack ---
	s.AddTool(mcp.NewTool("project_zstack",
		mcp.WithDescription("Project 4D microscopy z-stacks to 2D time series around the best-focus slice of each timepoint."),
		mcp.WithString("input_dir", mcp.Description("Folder containing TIFF hyperstacks (defaults to the configured input folder)."), mcp.Required()),
		mcp.WithString("mode", mcp.Description("Projection mode (max or mean). Defaults to 'max'."), mcp.Enum("max", "mean")),
		mcp.WithNumber("z_range", mcp.Description("Number of slices to include on each side of the best-focus slice.")),
		mcp.WithBoolean("dry_run", mcp.Description("Compute the report without writing projection files.")),
	), h.handleProjectZStack)

	// --- 2. Tool: evaluate_masks ---
	s.AddTool(mcp.NewTool("evaluate_masks",
		mcp.WithDescription("Score segmentation masks against reference masks using the Adjusted Rand Index."),
		mcp.WithString("ref_dir", mcp.Description("Folder containing reference (ground truth) masks."), mcp.Required()),
		mcp.WithString("seg_dir", mcp.Description("Folder containing segmentation masks to score."), mcp.Required()),
	), h.handleEvaluateMasks)

	// --- 3. Tool: inspect_focus ---
	s.AddTool(mcp.NewTool("inspect_focus",
		mcp.WithDescription("Report per-slice focus scores for every timepoint of one stack file without projecting it."),
		mcp.WithString("input_dir", mcp.Description("Folder containing the stack file."), mcp.Required()),
		mcp.WithString("file", mcp.Description("Stack file name to inspect."), mcp.Required()),
	), h.handleInspectFocus)

	return s
}

// StartMCPServer starts the zproj MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.VolumeStore, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, store, mgr)
	return server.ServeStdio(s)
}
