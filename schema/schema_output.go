package schema

// Focus quality thresholds on the contrast ratio (best slice std dev over
// the stack's mean std dev). A flat stack has contrast near 1.0.
const (
	SharpContrast = 3.0
	GoodContrast  = 2.0
	SoftContrast  = 1.2
)

// GetPlainLabel returns a plain text label describing how decisively the
// best-focus heuristic separated the chosen slice from the rest of the stack.
func GetPlainLabel(contrast float64) string {
	switch {
	case contrast >= SharpContrast:
		return "Sharp"
	case contrast >= GoodContrast:
		return "Good"
	case contrast >= SoftContrast:
		return "Soft"
	default:
		return "Flat"
	}
}

// EnrichedTimepointResult adds presentation data to a TimepointResult.
type EnrichedTimepointResult struct {
	FileName string `json:"file_name"`
	Label    string `json:"label"`
	TimepointResult
}

// EnrichReports flattens file reports into labeled per-timepoint rows.
func EnrichReports(reports []FileReport) []EnrichedTimepointResult {
	var output []EnrichedTimepointResult
	for _, r := range reports {
		for _, tp := range r.Timepoints {
			output = append(output, EnrichedTimepointResult{
				FileName:        r.FileName,
				Label:           GetPlainLabel(tp.Contrast),
				TimepointResult: tp,
			})
		}
	}
	return output
}
