package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/csalatca/zproj/internal/cellpose"
	"github.com/csalatca/zproj/internal/contract"
)

// ExecuteSegmentTrain launches a cellpose training run in the configured
// Python environment. It serves as the entry point for 'segment train'.
func ExecuteSegmentTrain(ctx context.Context, cfg *contract.Config, runner contract.CommandRunner) error {
	args := cellpose.BuildTrainArgs(cfg)

	fmt.Printf("Training cellpose model from %s\n", cfg.TrainDir)
	fmt.Printf("Command: %s %s\n", cfg.PythonBin, strings.Join(args, " "))
	if cfg.DryRun {
		fmt.Println("Dry run: training not started")
		return nil
	}

	start := time.Now()
	if err := runner.Run(ctx, os.Stdout, os.Stderr, cfg.PythonBin, args...); err != nil {
		return fmt.Errorf("cellpose training failed: %w", err)
	}
	fmt.Printf("Training finished in %v\n", time.Since(start).Round(time.Second))
	return nil
}
