// Package parquet provides data structures and functions for exporting zproj
// run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/csalatca/zproj/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single projection run with metadata.
// This struct maps to the zproj_runs database table.
type Run struct {
	// RunID is the unique identifier for this projection run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalFiles is the number of stack files projected in this run
	TotalFiles int32 `parquet:"total_files,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ProjectionRow represents the projection decision for one timepoint of one file.
// This struct maps to the zproj_projection_rows database table.
type ProjectionRow struct {
	// RunID references the parent projection run
	RunID int64 `parquet:"run_id,snappy"`

	// FileName is the name of the stack file
	FileName string `parquet:"file_name,snappy"`

	// Timepoint is the 1-based timepoint index
	Timepoint int32 `parquet:"timepoint,snappy"`

	// BestZ is the 1-based index of the sharpest slice
	BestZ int32 `parquet:"best_z,snappy"`

	// StartZ is the 1-based first slice of the projected window
	StartZ int32 `parquet:"start_z,snappy"`

	// StopZ is the 1-based last slice of the projected window
	StopZ int32 `parquet:"stop_z,snappy"`

	// NSlices is the number of slices in the projected window
	NSlices int32 `parquet:"n_slices,snappy"`

	// Projection indicates which reduction was applied (max or mean)
	Projection string `parquet:"projection,snappy"`

	// FocusScore is the standard deviation of the sharpest slice
	FocusScore float64 `parquet:"focus_score,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteProjectionRowsParquet writes a slice of ProjectionRow structs to a Parquet file.
func WriteProjectionRowsParquet(data []ProjectionRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the ProjectionRow struct tags
	writer := parquet.NewGenericWriter[ProjectionRow](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalFiles:    record.TotalFiles,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertProjectionRowRecords converts schema.ProjectionRowRecord to ProjectionRow for Parquet export.
func ConvertProjectionRowRecords(records []schema.ProjectionRowRecord) []ProjectionRow {
	result := make([]ProjectionRow, len(records))
	for i, record := range records {
		result[i] = ProjectionRow{
			RunID:      record.RunID,
			FileName:   record.FileName,
			Timepoint:  record.Timepoint,
			BestZ:      record.BestZ,
			StartZ:     record.StartZ,
			StopZ:      record.StopZ,
			NSlices:    record.NSlices,
			Projection: record.Projection,
			FocusScore: record.FocusScore,
		}
	}
	return result
}
