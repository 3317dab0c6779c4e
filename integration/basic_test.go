//go:build basic

package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestZprojProjectEndToEnd runs the built binary over a generated stack and
// checks that a projection file appears.
func TestZprojProjectEndToEnd(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeTestStack(t, inputDir, "exp1_c1.tif")

	err := runZprojCommand(t, "project", inputDir, "--output-dir", outputDir, "--workers", "2")
	require.NoError(t, err)

	outPath := filepath.Join(outputDir, "exp1_c1_maxproj.tif")
	info, err := os.Stat(outPath)
	require.NoError(t, err, "projection file should exist")
	assert.Greater(t, info.Size(), int64(0))
}

// TestZprojProjectDryRun verifies that --dry-run writes nothing.
func TestZprojProjectDryRun(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "proj")
	writeTestStack(t, inputDir, "exp2_c1.tif")

	err := runZprojCommand(t, "project", inputDir, "--output-dir", outputDir, "--dry-run")
	require.NoError(t, err)

	_, err = os.Stat(outputDir)
	assert.True(t, os.IsNotExist(err), "dry run must not create the output folder")
}

// TestZprojVersion sanity-checks the binary runs at all.
func TestZprojVersion(t *testing.T) {
	require.NoError(t, runZprojCommand(t, "version"))
}
