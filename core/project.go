// Package core has the projection and evaluation pipelines for zproj.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/csalatca/zproj/core/algo"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/internal/outwriter"
	"github.com/csalatca/zproj/schema"
)

// fileOutcome is the per-file result flowing out of the worker pool.
type fileOutcome struct {
	name    string
	report  *schema.FileReport
	skipped bool
	err     error
}

// ExecuteProject runs the projection pipeline and prints results to stdout.
// It serves as the main entry point for the 'project' command.
func ExecuteProject(ctx context.Context, cfg *contract.Config, store contract.VolumeStore, mgr contract.StoreManager) error {
	start := time.Now()
	output, err := RunProject(ctx, cfg, store, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.New(cfg).WriteProjectOutput(output, duration)
}

// RunProject performs the projection pipeline and returns the aggregate
// output without printing. The MCP server calls this directly.
func RunProject(ctx context.Context, cfg *contract.Config, store contract.VolumeStore, mgr contract.StoreManager) (*schema.ProjectOutput, error) {
	if !shouldSuppressHeader(ctx) {
		logProjectHeader(cfg)
	}

	files, err := listFilteredStacks(cfg, store)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no stack files found")
	}
	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output folder: %w", err)
		}
	}

	// --- 0. Begin run tracking (if configured) ---
	var runID int64
	runStore := mgr.GetRunStore()
	if runStore != nil {
		configParams := map[string]any{
			"input_dir": cfg.InputDir,
			"mode":      string(cfg.Mode),
			"z_range":   cfg.ZRange,
			"workers":   cfg.Workers,
			"dry_run":   cfg.DryRun,
		}
		runID, err = runStore.BeginRun(time.Now(), configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Projection phase (worker pool) ---
	outcomes := projectAll(ctx, cfg, store, files)

	output := &schema.ProjectOutput{}
	for _, oc := range outcomes {
		switch {
		case oc.skipped:
			output.Skipped = append(output.Skipped, oc.name)
		case oc.err != nil:
			return nil, fmt.Errorf("%s: %w", oc.name, oc.err)
		default:
			output.Reports = append(output.Reports, *oc.report)
		}
	}
	sort.Slice(output.Reports, func(i, j int) bool {
		return output.Reports[i].FileName < output.Reports[j].FileName
	})
	sort.Strings(output.Skipped)
	if len(output.Reports) == 0 {
		return nil, errors.New("no hyperstack files could be projected")
	}

	// --- 2. Record rows and end run tracking ---
	if id, ok := getRunID(ctx); ok && runStore != nil {
		for _, report := range output.Reports {
			for _, tp := range report.Timepoints {
				if err := runStore.RecordProjectionRow(id, report.FileName, tp); err != nil {
					contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", report.FileName), err)
					break
				}
			}
		}
		if err := runStore.EndRun(id, time.Now(), len(output.Reports)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return output, nil
}

// listFilteredStacks lists TIFF files in the input folder and applies the
// channel and exclude filters.
func listFilteredStacks(cfg *contract.Config, store contract.VolumeStore) ([]string, error) {
	names, err := store.ListStacks(cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input folder: %w", err)
	}
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if !contract.MatchesChannel(name, cfg.Channels) {
			continue
		}
		if contract.ShouldIgnore(name, cfg.Excludes) {
			continue
		}
		filtered = append(filtered, name)
	}
	return filtered, nil
}

// projectAll processes all files in parallel using a worker pool.
// It spawns cfg.Workers goroutines and aggregates their outcomes.
func projectAll(ctx context.Context, cfg *contract.Config, store contract.VolumeStore, files []string) []fileOutcome {
	fileCh := make(chan string, len(files))
	outcomeCh := make(chan fileOutcome, len(files))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Go(func() {
			for f := range fileCh {
				outcomeCh <- projectOneFile(ctx, cfg, store, f)
			}
		})
	}

	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)

	wg.Wait()
	close(outcomeCh)

	outcomes := make([]fileOutcome, 0, len(files))
	for oc := range outcomeCh {
		outcomes = append(outcomes, oc)
	}
	return outcomes
}

// projectOneFile loads one hyperstack, projects every timepoint around its
// best-focus slice and writes the projected stack next to the report.
func projectOneFile(ctx context.Context, cfg *contract.Config, store contract.VolumeStore, name string) fileOutcome {
	if err := ctx.Err(); err != nil {
		return fileOutcome{name: name, err: err}
	}

	vol, err := store.ReadVolume(filepath.Join(cfg.InputDir, name), cfg.Frames, cfg.Slices)
	if err != nil {
		if errors.Is(err, contract.ErrNotHyperstack) {
			contract.LogWarn(fmt.Sprintf("Skipping %s", name), err)
			return fileOutcome{name: name, skipped: true}
		}
		return fileOutcome{name: name, err: err}
	}

	report := &schema.FileReport{FileName: name, Dims: vol.Dims()}
	planes := make([][]uint16, 0, vol.T)
	for t := 0; t < vol.T; t++ {
		stack := vol.Stack(t)
		result, projected, err := projectTimepoint(stack, cfg.Mode, cfg.ZRange)
		if err != nil {
			return fileOutcome{name: name, err: fmt.Errorf("timepoint %d: %w", t+1, err)}
		}
		result.Timepoint = t + 1
		report.Timepoints = append(report.Timepoints, result)
		planes = append(planes, projected)
	}

	if !cfg.DryRun {
		outPath := filepath.Join(cfg.OutputDir, outputFileName(name, cfg.Mode))
		if err := store.WriteStack(outPath, planes, vol.H, vol.W); err != nil {
			return fileOutcome{name: name, err: fmt.Errorf("failed to write projection: %w", err)}
		}
		report.OutputPath = outPath
	}
	return fileOutcome{name: name, report: report}
}

// projectTimepoint reduces one z-stack to a single plane around its
// best-focus slice. Reported z indices are 1-based for Fiji.
func projectTimepoint(stack schema.Stack, mode schema.ProjectionMode, zRange int) (schema.TimepointResult, []uint16, error) {
	best, scores, err := algo.BestFocusSlice(stack)
	if err != nil {
		return schema.TimepointResult{}, nil, err
	}
	lo, hi := algo.ClampWindow(best, zRange, stack.Z)
	window := stack.Window(lo, hi)

	var projected []uint16
	switch mode {
	case schema.MeanProjection:
		projected = algo.MeanProject(window)
	default:
		projected = algo.MaxProject(window)
	}

	result := schema.TimepointResult{
		BestZ:      best + 1,
		StartZ:     lo + 1,
		StopZ:      hi + 1,
		NSlices:    hi - lo + 1,
		Projection: mode,
		FocusScore: scores[best],
		Contrast:   algo.Contrast(scores, best),
	}
	return result, projected, nil
}

// outputFileName derives the projection file name, e.g. "a_c1.tif" with
// max mode becomes "a_c1_maxproj.tif".
func outputFileName(name string, mode schema.ProjectionMode) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return stem + mode.Suffix() + ".tif"
}

// logProjectHeader prints the run parameters before the pipeline starts.
func logProjectHeader(cfg *contract.Config) {
	fmt.Printf("Projecting stacks in %s (mode=%s, z-range=%d, workers=%d)\n",
		cfg.InputDir, cfg.Mode, cfg.ZRange, cfg.Workers)
	if cfg.DryRun {
		fmt.Println("Dry run: no projection files will be written")
	}
}
