package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/csalatca/zproj/core/algo"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/internal/outwriter"
	"github.com/csalatca/zproj/schema"
)

// ExecuteEvaluate runs the mask-agreement evaluation and prints results
// to stdout. It serves as the main entry point for the 'evaluate' command.
func ExecuteEvaluate(ctx context.Context, cfg *contract.Config, store contract.VolumeStore) error {
	start := time.Now()
	output, err := RunEvaluate(ctx, cfg, store)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.New(cfg).WriteEvalOutput(output, duration)
}

// RunEvaluate scores segmentation masks against reference masks using the
// Adjusted Rand Index and returns the aggregate output without printing.
func RunEvaluate(ctx context.Context, cfg *contract.Config, store contract.VolumeStore) (*schema.EvalOutput, error) {
	if !shouldSuppressHeader(ctx) {
		fmt.Printf("Evaluating masks in %s against references in %s\n", cfg.SegDir, cfg.RefDir)
	}

	refs, err := indexBySample(cfg.RefDir, store)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference folder: %w", err)
	}
	segs, err := indexBySample(cfg.SegDir, store)
	if err != nil {
		return nil, fmt.Errorf("failed to list segmentation folder: %w", err)
	}
	if len(refs) == 0 {
		return nil, errors.New("no reference masks found")
	}

	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	output := &schema.EvalOutput{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refFile := refs[id]
		segFile, ok := segs[id]
		if !ok {
			contract.LogWarn(fmt.Sprintf("No segmentation mask for sample %s", id), errors.New("pair missing"))
			output.Skipped = append(output.Skipped, id)
			continue
		}

		result, err := evaluatePair(cfg, store, id, refFile, segFile)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping sample %s", id), err)
			output.Skipped = append(output.Skipped, id)
			continue
		}
		output.Results = append(output.Results, result)
	}
	if len(output.Results) == 0 {
		return nil, errors.New("no mask pairs could be evaluated")
	}
	return output, nil
}

// evaluatePair loads one reference/segmentation mask pair and scores it.
func evaluatePair(cfg *contract.Config, store contract.VolumeStore, id, refFile, segFile string) (schema.EvalResult, error) {
	ref, refH, refW, err := store.ReadMask(filepath.Join(cfg.RefDir, refFile))
	if err != nil {
		return schema.EvalResult{}, fmt.Errorf("reference mask: %w", err)
	}
	seg, segH, segW, err := store.ReadMask(filepath.Join(cfg.SegDir, segFile))
	if err != nil {
		return schema.EvalResult{}, fmt.Errorf("segmentation mask: %w", err)
	}
	if refH != segH || refW != segW {
		return schema.EvalResult{}, fmt.Errorf("shape mismatch: reference %dx%d vs segmentation %dx%d", refW, refH, segW, segH)
	}

	ari, err := algo.AdjustedRandIndex(ref, seg)
	if err != nil {
		return schema.EvalResult{}, err
	}
	return schema.EvalResult{
		SampleID: id,
		RefFile:  refFile,
		SegFile:  segFile,
		ARI:      ari,
		Pixels:   len(ref),
	}, nil
}

// indexBySample maps sample IDs to file names for one mask folder.
// Files whose names do not yield a sample ID are ignored.
func indexBySample(dir string, store contract.VolumeStore) (map[string]string, error) {
	names, err := store.ListStacks(dir)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(names))
	for _, name := range names {
		id, ok := contract.SampleID(name)
		if !ok {
			continue
		}
		// First match wins; folders are listed in sorted order.
		if _, exists := index[id]; !exists {
			index[id] = name
		}
	}
	return index, nil
}
