// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/csalatca/zproj/schema"
)

// ErrNotHyperstack marks a readable TIFF that does not carry both time and
// z dimensions. The pipeline skips such files instead of failing the run.
var ErrNotHyperstack = errors.New("file is not a 4D hyperstack")

// VolumeStore defines the file I/O operations the projection pipeline needs.
// This allows the core logic to be tested without TIFF fixtures on disk.
type VolumeStore interface {
	// ListStacks returns candidate stack file names (not paths) in a directory,
	// sorted lexically.
	ListStacks(dir string) ([]string, error)

	// ReadVolume loads a hyperstack file as a (T, Z, Y, X) volume.
	// frames/slices override the dimensions recorded in the file when > 0.
	ReadVolume(path string, frames, slices int) (*schema.Volume, error)

	// WriteStack writes projected timepoint planes as a multi-page TIFF.
	WriteStack(path string, planes [][]uint16, h, w int) error

	// ReadMask loads a single-plane label image.
	ReadMask(path string) (labels []uint32, h, w int, err error)
}

// StoreManager defines the interface for managing the run-tracking store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking projection runs and their rows.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalFiles int) error

	// RecordProjectionRow stores one per-timepoint projection decision
	RecordProjectionRow(runID int64, fileName string, tp schema.TimepointResult) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.StoreStatus, error)

	// GetAllRuns retrieves all run records, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllProjectionRows retrieves all projection rows, ordered by run and file
	GetAllProjectionRows() ([]schema.ProjectionRowRecord, error)

	// Close closes the underlying connection
	Close() error
}

// CommandRunner abstracts launching the external segmentation harness so the
// invocation can be stubbed in tests.
type CommandRunner interface {
	// Run executes the named program with args, streaming output to stdout/stderr.
	Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
}
