package cmd

import (
	"github.com/csalatca/zproj/core"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/spf13/cobra"
)

// projectCmd performs best-focus z-stack projection.
var projectCmd = &cobra.Command{
	Use:   "project [input-dir]",
	Short: "Project 4D hyperstacks to best-focus 2D time series.",
	Long: `Scan a folder for TIFF hyperstacks and reduce each timepoint to a single
plane around its sharpest z-slice.

For every matching file, zproj:
- Loads the stack as a (T, Z, Y, X) uint16 volume
- Scores each z-slice by the standard deviation of its pixel intensities
- Picks the best-focused slice per timepoint (ties go to the lowest z)
- Clamps a symmetric window of --z-range slices around it to the stack bounds
- Collapses the window with a max or mean projection
- Writes the projected T-series as a multi-page TIFF Fiji can reopen

Reported z indices are 1-based to match Fiji's slice numbering.

Examples:
  # Project every c1 stack with the default max mode
  zproj project ./stacks --channel c1

  # Average over a wider window instead
  zproj project ./stacks --mode mean --z-range 2

  # Inspect focus quality without writing any files
  zproj project ./stacks --dry-run --detail

  # Export the per-timepoint report for tracking
  zproj project ./stacks --output csv --output-file report.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProject(rootCtx, cfg, volumeStore, storeManager); err != nil {
			contract.LogFatal("Cannot run projection", err)
		}
	},
}
