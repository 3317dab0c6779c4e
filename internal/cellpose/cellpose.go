// Package cellpose builds and launches cellpose training invocations.
//
// Training itself runs in the user's Python environment; this package only
// assembles the command line and streams its output.
package cellpose

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/csalatca/zproj/internal/contract"
)

// BuildTrainArgs assembles the argument list for a cellpose training run.
// The list is passed to the configured Python interpreter.
func BuildTrainArgs(cfg *contract.Config) []string {
	args := []string{
		"-m", "cellpose",
		"--train",
		"--dir", cfg.TrainDir,
		"--pretrained_model", cfg.PretrainedModel,
		"--chan", strconv.Itoa(cfg.ChannelIndex),
		"--learning_rate", formatFloat(cfg.LearningRate),
		"--weight_decay", formatFloat(cfg.WeightDecay),
		"--n_epochs", strconv.Itoa(cfg.Epochs),
		"--verbose",
	}
	if cfg.TestDir != "" {
		// Keep --test_dir adjacent to --dir for readable dry-run output.
		withTest := make([]string, 0, len(args)+2)
		withTest = append(withTest, args[:5]...)
		withTest = append(withTest, "--test_dir", cfg.TestDir)
		withTest = append(withTest, args[5:]...)
		return withTest
	}
	return args
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExecRunner launches commands through os/exec.
type ExecRunner struct{}

var _ contract.CommandRunner = ExecRunner{} // Compile-time check

// NewExecRunner creates an ExecRunner.
func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

// Run executes the named program, streaming its output as it runs.
func (ExecRunner) Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s exited with error: %w", name, err)
	}
	return nil
}
