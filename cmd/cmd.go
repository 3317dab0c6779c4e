// Package cmd defines the command-line interface for zproj.
package cmd

import (
	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the segment subcommands to the parent segment command
	segmentCmd.AddCommand(segmentTrainCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-timepoint focus score and contrast columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("store-backend", string(schema.NoneBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Report what would be done without writing files or launching processes")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of projectCmd to Viper
	projectCmd.Flags().String("channel", "", "Comma-separated channel substrings to match (e.g. c1,c2)")
	projectCmd.Flags().String("exclude", "", "Comma-separated list of filename prefixes or patterns to ignore")
	projectCmd.Flags().String("mode", string(schema.MaxProjection), "Projection mode: max or mean")
	projectCmd.Flags().Int("z-range", contract.DefaultZRange, "Half-width of the z window around the best-focus slice")
	projectCmd.Flags().Int("frames", 0, "Override for timepoint count when file metadata is absent")
	projectCmd.Flags().Int("slices", 0, "Override for z-slice count when file metadata is absent")
	projectCmd.Flags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	projectCmd.Flags().String("output-dir", contract.DefaultOutputDir, "Folder to write projected stacks into")
	if err := viper.BindPFlags(projectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding project flags", err)
	}

	// Bind all flags of evaluateCmd to Viper
	evaluateCmd.Flags().String("ref-dir", "", "Folder with reference (ground-truth) masks")
	evaluateCmd.Flags().String("seg-dir", "", "Folder with segmentation masks to score")
	if err := viper.BindPFlags(evaluateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding evaluate flags", err)
	}

	// Bind all flags of segmentTrainCmd to Viper
	segmentTrainCmd.Flags().String("train-dir", "", "Folder with training images and masks")
	segmentTrainCmd.Flags().String("test-dir", "", "Optional folder with held-out test images")
	segmentTrainCmd.Flags().String("pretrained-model", "", "Pretrained cellpose model to fine-tune from")
	segmentTrainCmd.Flags().Int("channel-index", 0, "Image channel to train on")
	segmentTrainCmd.Flags().Float64("learning-rate", contract.DefaultLearnRate, "Training learning rate")
	segmentTrainCmd.Flags().Float64("weight-decay", contract.DefaultWeightDecay, "Training weight decay")
	segmentTrainCmd.Flags().Int("epochs", contract.DefaultEpochs, "Number of training epochs")
	segmentTrainCmd.Flags().String("python", contract.DefaultPythonBin, "Python interpreter to launch cellpose with")
	if err := viper.BindPFlags(segmentTrainCmd.Flags()); err != nil {
		contract.LogFatal("Error binding segment train flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
