package cmd

import (
	"github.com/csalatca/zproj/core"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/spf13/cobra"
)

// evaluateCmd scores segmentation masks against reference annotations.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score segmentation masks against reference masks with ARI.",
	Long: `Pair reference masks with segmentation masks and score each pair with the
Adjusted Rand Index.

Masks are paired by sample id: the first two underscore-separated tokens of
the filename (e.g. "exp1_s2" from "exp1_s2_cp_masks.tif"). Pairs with a
missing counterpart or mismatched dimensions are skipped with a warning.

ARI ranges from -0.5 (worse than chance) through 0 (chance level) to 1.0
(identical partitions); label renumbering does not affect the score.

Examples:
  # Score cellpose output against hand annotations
  zproj evaluate --ref-dir ./annotations --seg-dir ./cellpose_out

  # Export per-sample scores for a model comparison
  zproj evaluate --ref-dir ./annotations --seg-dir ./cellpose_out --output csv --output-file ari.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.RevalidateEvaluate(cfg); err != nil {
			contract.LogFatal("Invalid evaluation parameters", err)
		}
		if err := core.ExecuteEvaluate(rootCtx, cfg, volumeStore); err != nil {
			contract.LogFatal("Cannot run evaluation", err)
		}
	},
}
