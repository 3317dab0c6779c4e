// Package schema has configs, models and global variables for all parts of zproj.
package schema

import "fmt"

// Volume is a 4D microscopy hyperstack indexed by (time, z, y, x).
// Pixels are stored in a single allocation, timepoint-major, and are
// read-only after loading.
type Volume struct {
	T   int      // Number of timepoints
	Z   int      // Number of z slices per timepoint
	H   int      // Plane height (rows)
	W   int      // Plane width (columns)
	Pix []uint16 // len == T*Z*H*W
}

// NewVolume allocates a volume with the given dimensions.
func NewVolume(t, z, h, w int) *Volume {
	return &Volume{T: t, Z: z, H: h, W: w, Pix: make([]uint16, t*z*h*w)}
}

// Stack returns the 3D z-stack for one timepoint. The returned stack
// shares the volume's backing array.
func (v *Volume) Stack(t int) Stack {
	n := v.Z * v.H * v.W
	return Stack{Z: v.Z, H: v.H, W: v.W, Pix: v.Pix[t*n : (t+1)*n]}
}

// Dims returns a human-readable (T, Z, Y, X) dimension string.
func (v *Volume) Dims() string {
	return fmt.Sprintf("%dx%dx%dx%d", v.T, v.Z, v.H, v.W)
}

// Stack is a 3D z-stack (z, y, x) for a single timepoint.
type Stack struct {
	Z   int
	H   int
	W   int
	Pix []uint16 // len == Z*H*W
}

// Plane returns the 2D pixel slice for one z index.
func (s Stack) Plane(z int) []uint16 {
	n := s.H * s.W
	return s.Pix[z*n : (z+1)*n]
}

// Window returns the planes for the inclusive z range [lo, hi].
func (s Stack) Window(lo, hi int) [][]uint16 {
	planes := make([][]uint16, 0, hi-lo+1)
	for z := lo; z <= hi; z++ {
		planes = append(planes, s.Plane(z))
	}
	return planes
}

// TimepointResult records the projection decision for one timepoint of one file.
// Z indices are 1-based in reports for Fiji compatibility.
type TimepointResult struct {
	Timepoint  int            `json:"timepoint"`   // 1-based
	BestZ      int            `json:"best_z"`      // 1-based
	StartZ     int            `json:"start_z"`     // 1-based, inclusive
	StopZ      int            `json:"stop_z"`      // 1-based, inclusive
	NSlices    int            `json:"n_slices"`    // StopZ - StartZ + 1
	Projection ProjectionMode `json:"projection"`  // max or mean
	FocusScore float64        `json:"focus_score"` // std dev of the best slice
	Contrast   float64        `json:"contrast"`    // best std dev over mean std dev
}

// FileReport is the per-file outcome of a projection run.
type FileReport struct {
	FileName   string            `json:"file_name"`
	Dims       string            `json:"dims"`
	OutputPath string            `json:"output_path,omitempty"`
	Timepoints []TimepointResult `json:"timepoints"`
}

// ProjectOutput is the aggregate outcome of a projection run.
type ProjectOutput struct {
	Reports []FileReport `json:"reports"`
	Skipped []string     `json:"skipped,omitempty"` // files skipped for insufficient dimensions
}

// TotalTimepoints counts report rows across all files.
func (o *ProjectOutput) TotalTimepoints() int {
	total := 0
	for _, r := range o.Reports {
		total += len(r.Timepoints)
	}
	return total
}

// EvalResult is the mask-agreement result for one matched sample pair.
type EvalResult struct {
	SampleID string  `json:"sample_id"`
	RefFile  string  `json:"ref_file"`
	SegFile  string  `json:"seg_file"`
	ARI      float64 `json:"ari"`
	Pixels   int     `json:"pixels"`
}

// EvalOutput is the aggregate outcome of an evaluation run.
type EvalOutput struct {
	Results []EvalResult `json:"results"`
	Skipped []string     `json:"skipped,omitempty"` // samples skipped for missing pairs or shape mismatch
}

// FocusProfile holds per-slice focus scores for one timepoint, for inspection
// without running a projection.
type FocusProfile struct {
	Timepoint int       `json:"timepoint"` // 1-based
	BestZ     int       `json:"best_z"`    // 1-based
	Scores    []float64 `json:"scores"`    // per-slice std dev, index 0 == z 1
}
