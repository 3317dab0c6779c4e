package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name     string
		contrast float64
		label    string
	}{
		{"flat", 1.0, "Flat"},
		{"soft", 1.5, "Soft"},
		{"good", 2.5, "Good"},
		{"sharp", 4.0, "Sharp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.contrast)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		// Verify file was created
		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestIsStackFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		isStack bool
	}{
		{"tif extension", "exp1_c1.tif", true},
		{"tiff extension", "exp1_c1.tiff", true},
		{"uppercase extension", "exp1_c1.TIF", true},
		{"png", "exp1_c1.png", false},
		{"no extension", "exp1_c1", false},
		{"tif in stem only", "tif_notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isStack, IsStackFile(tt.file))
		})
	}
}

func TestMatchesChannel(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		channels []string
		matches  bool
	}{
		{
			name:     "empty channels match everything",
			file:     "exp1_c3.tif",
			channels: nil,
			matches:  true,
		},
		{
			name:     "single channel match",
			file:     "exp1_c1.tif",
			channels: []string{"c1"},
			matches:  true,
		},
		{
			name:     "one of several channels",
			file:     "exp1_c2.tif",
			channels: []string{"c1", "c2"},
			matches:  true,
		},
		{
			name:     "no channel match",
			file:     "exp1_c3.tif",
			channels: []string{"c1", "c2"},
			matches:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, MatchesChannel(tt.file, tt.channels))
		})
	}
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		excludes   []string
		wantIgnore bool
	}{
		{
			name:       "empty excludes",
			file:       "exp1_c1.tif",
			excludes:   []string{},
			wantIgnore: false,
		},
		{
			name:       "substring match",
			file:       "exp1_junk_c1.tif",
			excludes:   []string{"junk"},
			wantIgnore: true,
		},
		{
			name:       "suffix match",
			file:       "exp1_c1.ome.tif",
			excludes:   []string{".ome.tif"},
			wantIgnore: true,
		},
		{
			name:       "glob match",
			file:       "calib_c1.tif",
			excludes:   []string{"calib*"},
			wantIgnore: true,
		},
		{
			name:       "no match",
			file:       "exp1_c1.tif",
			excludes:   []string{"junk", "calib*"},
			wantIgnore: false,
		},
		{
			name:       "blank patterns skipped",
			file:       "exp1_c1.tif",
			excludes:   []string{"", "  "},
			wantIgnore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldIgnore(tt.file, tt.excludes)
			assert.Equal(t, tt.wantIgnore, got)
		})
	}
}

func TestSampleID(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		id     string
		wantOK bool
	}{
		{"mask file", "exp1_s2_cp_masks.tif", "exp1_s2", true},
		{"two tokens", "exp1_s2.tif", "exp1_s2.tif", true},
		{"single token", "exp1.tif", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := SampleID(tt.file)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.id, id)
			}
		})
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxLen   int
		expected string
	}{
		{"short path unchanged", "a/b.tif", 20, "a/b.tif"},
		{"long path keeps tail", "very/long/path/to/stack.tif", 12, "...stack.tif"},
		{"tiny budget", "stack.tif", 3, "tif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.path, tt.maxLen)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len(got), max(tt.maxLen, len(tt.expected)))
		})
	}
}

func TestGetRunDBFilePath(t *testing.T) {
	path := GetRunDBFilePath()

	// Should not be empty
	assert.NotEmpty(t, path)

	// Should contain the database name
	assert.Contains(t, path, ".zproj_runs.db")

	// Should be in home directory
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}
