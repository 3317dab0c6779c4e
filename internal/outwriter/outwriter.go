// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct {
	cfg *contract.Config
}

// New creates a new instance of the output writer.
func New(cfg *contract.Config) *OutWriter {
	return &OutWriter{cfg: cfg}
}

// WriteProjectOutput prints projection results using the configured output format.
func (ow *OutWriter) WriteProjectOutput(output *schema.ProjectOutput, duration time.Duration) error {
	return WriteProjectResults(output, ow.cfg, duration)
}

// WriteEvalOutput prints evaluation results using the configured output format.
func (ow *OutWriter) WriteEvalOutput(output *schema.EvalOutput, duration time.Duration) error {
	return WriteEvalResults(output, ow.cfg, duration)
}
