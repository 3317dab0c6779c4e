package schema

import "time"

// RunRecord represents a row from the zproj_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalFiles    int32
	ConfigParams  *string
}

// ProjectionRowRecord represents a row from the zproj_projection_rows table.
type ProjectionRowRecord struct {
	RunID      int64
	FileName   string
	Timepoint  int32
	BestZ      int32
	StartZ     int32
	StopZ      int32
	NSlices    int32
	Projection string
	FocusScore float64
}

// StoreStatus represents the status of the run-tracking store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalFiles    int              `json:"total_files"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
