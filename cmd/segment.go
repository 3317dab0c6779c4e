package cmd

import (
	"github.com/csalatca/zproj/core"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/spf13/cobra"
)

// segmentCmd groups commands that drive the external cellpose harness.
var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Drive the external cellpose segmentation harness",
	Long: `Commands that assemble and launch cellpose invocations.

zproj does not reimplement segmentation; it builds the command line for the
cellpose Python package and streams its output. The interpreter is selected
with --python and must have cellpose installed.

Subcommands:
  train - fine-tune a pretrained cellpose model on annotated images`,
}

// segmentTrainCmd fine-tunes a pretrained cellpose model.
var segmentTrainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fine-tune a pretrained cellpose model on annotated images.",
	Long: `Launch a cellpose fine-tuning run on a folder of images and masks.

The training folder must contain images alongside their mask files in
cellpose's expected naming convention. An optional test folder provides
held-out images for validation during training.

Examples:
  # Fine-tune the cyto2 model
  zproj segment train --train-dir ./train --pretrained-model cyto2

  # Full parameter control
  zproj segment train --train-dir ./train --test-dir ./test \
    --pretrained-model cyto2 --channel-index 0 \
    --learning-rate 0.1 --weight-decay 0.0001 --epochs 300

  # Print the command without running it
  zproj segment train --train-dir ./train --pretrained-model cyto2 --dry-run`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.RevalidateSegment(cfg); err != nil {
			contract.LogFatal("Invalid training parameters", err)
		}
		if err := core.ExecuteSegmentTrain(rootCtx, cfg, cmdRunner); err != nil {
			contract.LogFatal("Cannot run cellpose training", err)
		}
	},
}
