package parquet

import (
	"fmt"
	"os"

	"github.com/csalatca/zproj/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRow is the per-timepoint projection report row for Parquet output.
type ReportRow struct {
	FileName   string  `parquet:"file_name,snappy"`
	Timepoint  int32   `parquet:"timepoint,snappy"`
	BestZ      int32   `parquet:"best_z,snappy"`
	StartZ     int32   `parquet:"start_z,snappy"`
	StopZ      int32   `parquet:"stop_z,snappy"`
	NSlices    int32   `parquet:"n_slices,snappy"`
	Projection string  `parquet:"projection,snappy"`
	FocusScore float64 `parquet:"focus_score,snappy"`
	Contrast   float64 `parquet:"contrast,snappy"`
	Label      string  `parquet:"label,snappy"`
}

// EvalRow is the per-sample evaluation result row for Parquet output.
type EvalRow struct {
	SampleID string  `parquet:"sample_id,snappy"`
	RefFile  string  `parquet:"ref_file,snappy"`
	SegFile  string  `parquet:"seg_file,snappy"`
	Pixels   int64   `parquet:"pixels,snappy"`
	ARI      float64 `parquet:"ari,snappy"`
}

// ConvertEnrichedTimepoints converts enriched report rows for Parquet output.
func ConvertEnrichedTimepoints(rows []schema.EnrichedTimepointResult) []ReportRow {
	result := make([]ReportRow, len(rows))
	for i, r := range rows {
		result[i] = ReportRow{
			FileName:   r.FileName,
			Timepoint:  int32(r.Timepoint),
			BestZ:      int32(r.BestZ),
			StartZ:     int32(r.StartZ),
			StopZ:      int32(r.StopZ),
			NSlices:    int32(r.NSlices),
			Projection: string(r.Projection),
			FocusScore: r.FocusScore,
			Contrast:   r.Contrast,
			Label:      r.Label,
		}
	}
	return result
}

// ConvertEvalResults converts evaluation results for Parquet output.
func ConvertEvalResults(results []schema.EvalResult) []EvalRow {
	result := make([]EvalRow, len(results))
	for i, r := range results {
		result[i] = EvalRow{
			SampleID: r.SampleID,
			RefFile:  r.RefFile,
			SegFile:  r.SegFile,
			Pixels:   int64(r.Pixels),
			ARI:      r.ARI,
		}
	}
	return result
}

// WriteReportRowsParquet writes projection report rows to a Parquet file.
func WriteReportRowsParquet(data []ReportRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[ReportRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteEvalRowsParquet writes evaluation result rows to a Parquet file.
func WriteEvalRowsParquet(data []EvalRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[EvalRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
