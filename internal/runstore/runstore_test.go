package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/csalatca/zproj/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RunStoreImpl)
}

func sampleTimepoint() schema.TimepointResult {
	return schema.TimepointResult{
		Timepoint:  1,
		BestZ:      5,
		StartZ:     4,
		StopZ:      6,
		NSlices:    3,
		Projection: schema.MaxProjection,
		FocusScore: 123.5,
	}
}

func TestRunStoreLifecycle(t *testing.T) {
	store := newSQLiteStore(t)

	start := time.Now().Add(-time.Minute)
	runID, err := store.BeginRun(start, map[string]any{"mode": "max", "z_range": 1})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordProjectionRow(runID, "exp1_c1.tif", sampleTimepoint()))
	require.NoError(t, store.EndRun(runID, time.Now(), 1))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.NotNil(t, runs[0].EndTime)
	require.NotNil(t, runs[0].RunDurationMs)
	assert.Greater(t, *runs[0].RunDurationMs, int32(0))
	assert.Equal(t, int32(1), runs[0].TotalFiles)
	require.NotNil(t, runs[0].ConfigParams)
	assert.Contains(t, *runs[0].ConfigParams, `"mode":"max"`)

	rows, err := store.GetAllProjectionRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "exp1_c1.tif", rows[0].FileName)
	assert.Equal(t, int32(5), rows[0].BestZ)
	assert.Equal(t, "max", rows[0].Projection)
	assert.InDelta(t, 123.5, rows[0].FocusScore, 1e-9)
}

func TestRunStoreStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, 0, status.TotalRuns)

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordProjectionRow(runID, "a_c1.tif", sampleTimepoint()))
	require.NoError(t, store.EndRun(runID, time.Now(), 3))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 3, status.TotalFiles)
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
	assert.Equal(t, int64(1), status.TableSizes[projectionRowsTable])
}

func TestRunStoreNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordProjectionRow(0, "a.tif", sampleTimepoint()))
	assert.NoError(t, store.EndRun(0, time.Now(), 0))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Nil(t, runs)

	assert.NoError(t, store.Close())
}

func TestNewRunStoreUnsupportedBackend(t *testing.T) {
	_, err := NewRunStore(schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported backend")
}

// TestQuoteTableName tests the quoteTableName function for all backends.
func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"zproj_runs"`},
		{schema.MySQLBackend, "`zproj_runs`"},
		{schema.PostgreSQLBackend, `"zproj_runs"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName(runsTable, tt.backend))
		})
	}
}

func TestClearRunsSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	assert.NoFileExists(t, dbPath)

	// Clearing a missing file is not an error.
	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
}

func TestClearRunsSQLiteRequiresPath(t *testing.T) {
	err := ClearRuns(schema.SQLiteBackend, "", "")
	assert.ErrorContains(t, err, "dbFilePath")
}

func TestMigrateRunsSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	// Re-running is a no-op.
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	// Roll everything back.
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))
}
