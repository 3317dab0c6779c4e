package core

import (
	"context"
	"path/filepath"

	"github.com/csalatca/zproj/core/algo"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/schema"
)

// InspectOutput carries per-timepoint focus profiles for one stack file.
type InspectOutput struct {
	FileName string                `json:"file_name"`
	Dims     string                `json:"dims"`
	Profiles []schema.FocusProfile `json:"profiles"`
}

// RunInspect computes the per-slice focus scores of every timepoint in one
// file without projecting or writing anything. The MCP server exposes this
// for interactive focus inspection.
func RunInspect(ctx context.Context, cfg *contract.Config, store contract.VolumeStore, fileName string) (*InspectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vol, err := store.ReadVolume(filepath.Join(cfg.InputDir, fileName), cfg.Frames, cfg.Slices)
	if err != nil {
		return nil, err
	}

	out := &InspectOutput{FileName: fileName, Dims: vol.Dims()}
	for t := 0; t < vol.T; t++ {
		best, scores, err := algo.BestFocusSlice(vol.Stack(t))
		if err != nil {
			return nil, err
		}
		out.Profiles = append(out.Profiles, schema.FocusProfile{
			Timepoint: t + 1,
			BestZ:     best + 1,
			Scores:    scores,
		})
	}
	return out, nil
}
