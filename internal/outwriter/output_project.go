package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/internal/parquet"
	"github.com/csalatca/zproj/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteProjectResults outputs the projection report, dispatching based on the output format configured.
func WriteProjectResults(output *schema.ProjectOutput, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	rows := schema.EnrichReports(output.Reports)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeProjectJSONResults(output, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeProjectCSVResults(rows, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteReportRowsParquet(parquet.ConvertEnrichedTimepoints(rows), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Printf("Wrote %d report rows to %s\n", len(rows), cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectTable(output, rows, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeProjectJSONResults handles opening the file and calling the JSON writer.
func writeProjectJSONResults(output *schema.ProjectOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, output)
	}, "Wrote JSON")
}

// writeProjectCSVResults handles opening the file and calling the CSV writer.
func writeProjectCSVResults(rows []schema.EnrichedTimepointResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForProject(csvWriter, rows, fmtFloat, intFmt)
	}, "Wrote CSV")
}

// writeProjectTable generates and writes the human-readable table.
func writeProjectTable(output *schema.ProjectOutput, rows []schema.EnrichedTimepointResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"File", "T", "Best Z", "Window", "Slices", "Mode", "Label"}
	if cfg.Detail {
		headers = append(headers, "Focus", "Contrast")
	}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for _, r := range rows {
		row := []string{
			contract.TruncatePath(r.FileName, getMaxTableNameWidth(cfg)), // File
			fmt.Sprintf(intFmt, r.Timepoint),                 // T
			fmt.Sprintf(intFmt, r.BestZ),                     // Best Z
			fmt.Sprintf("%d-%d", r.StartZ, r.StopZ),          // Window
			fmt.Sprintf(intFmt, r.NSlices),                   // Slices
			string(r.Projection),                             // Mode
			colorOrPlainLabel(cfg, r.Contrast),               // Label
		}
		if cfg.Detail {
			row = append(
				row,
				fmtFloat(r.FocusScore), // Focus
				fmtFloat(r.Contrast),   // Contrast
			)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	if _, err := fmt.Fprintf(writer, "Projected %d timepoints across %d files", len(rows), len(output.Reports)); err != nil {
		return err
	}
	if len(output.Skipped) > 0 {
		if _, err := fmt.Fprintf(writer, " (%d files skipped)", len(output.Skipped)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "\nProjection completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForProject writes the projection report in CSV format.
func writeCSVResultsForProject(w *csv.Writer, rows []schema.EnrichedTimepointResult, fmtFloat func(float64) string, intFmt string) error {
	// CSV header
	header := []string{
		"file",
		"timepoint",
		"best_z",
		"start_z",
		"stop_z",
		"n_slices",
		"projection",
		"focus_score",
		"contrast",
		"label",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.FileName,                       // File
			fmt.Sprintf(intFmt, r.Timepoint), // Timepoint
			fmt.Sprintf(intFmt, r.BestZ),     // Best slice (1-based)
			fmt.Sprintf(intFmt, r.StartZ),    // Window start (1-based)
			fmt.Sprintf(intFmt, r.StopZ),     // Window stop (1-based)
			fmt.Sprintf(intFmt, r.NSlices),   // Slices in window
			string(r.Projection),             // Projection mode
			fmtFloat(r.FocusScore),           // Focus score
			fmtFloat(r.Contrast),             // Contrast ratio
			r.Label,                          // Focus quality label
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// colorOrPlainLabel returns the focus quality label, colored when enabled.
func colorOrPlainLabel(cfg *contract.Config, contrast float64) string {
	if cfg.UseColors {
		return contract.GetColorLabel(contrast)
	}
	return schema.GetPlainLabel(contrast)
}
