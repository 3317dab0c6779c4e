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

// WriteEvalResults outputs the evaluation results, dispatching based on the output format configured.
func WriteEvalResults(output *schema.EvalOutput, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeEvalJSONResults(output, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeEvalCSVResults(output.Results, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteEvalRowsParquet(parquet.ConvertEvalResults(output.Results), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Printf("Wrote %d evaluation rows to %s\n", len(output.Results), cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvalTable(output, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeEvalJSONResults handles opening the file and calling the JSON writer.
func writeEvalJSONResults(output *schema.EvalOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, output)
	}, "Wrote JSON")
}

// writeEvalCSVResults handles opening the file and calling the CSV writer.
func writeEvalCSVResults(results []schema.EvalResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"sample_id", "ref_file", "seg_file", "pixels", "ari"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, r := range results {
				rec := []string{
					r.SampleID,                    // Sample
					r.RefFile,                     // Reference mask file
					r.SegFile,                     // Segmentation mask file
					fmt.Sprintf(intFmt, r.Pixels), // Pixels compared
					fmtFloat(r.ARI),               // Adjusted Rand Index
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeEvalTable generates and writes the human-readable table.
func writeEvalTable(output *schema.EvalOutput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	table.Header([]string{"Sample", "Reference", "Segmentation", "Pixels", "ARI"})

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range output.Results {
		data = append(data, []string{
			r.SampleID,                               // Sample
			contract.TruncatePath(r.RefFile, nameWidth),  // Reference mask
			contract.TruncatePath(r.SegFile, nameWidth),  // Segmentation mask
			fmt.Sprintf(intFmt, r.Pixels),            // Pixels compared
			fmtFloat(r.ARI),                          // Adjusted Rand Index
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	mean := 0.0
	for _, r := range output.Results {
		mean += r.ARI
	}
	if len(output.Results) > 0 {
		mean /= float64(len(output.Results))
	}
	if _, err := fmt.Fprintf(writer, "Evaluated %d sample pairs (mean ARI: %s)", len(output.Results), fmtFloat(mean)); err != nil {
		return err
	}
	if len(output.Skipped) > 0 {
		if _, err := fmt.Fprintf(writer, " (%d samples skipped)", len(output.Skipped)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "\nEvaluation completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}
