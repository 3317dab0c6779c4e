package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/csalatca/zproj/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	SharpColor = color.New(color.FgGreen, color.Bold) // decisive focus separation
	GoodColor  = color.New(color.FgCyan)              // usable separation
	SoftColor  = color.New(color.FgYellow)            // weak separation, worth reviewing
	FlatColor  = color.New(color.FgRed, color.Bold)   // no separation, projection suspect
)

// GetColorLabel returns a colored focus quality label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(contrast float64) string {
	text := schema.GetPlainLabel(contrast)

	switch text {
	case "Sharp":
		return SharpColor.Sprint(text)
	case "Good":
		return GoodColor.Sprint(text)
	case "Soft":
		return SoftColor.Sprint(text)
	default: // "Flat"
		return FlatColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the
// provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// IsStackFile reports whether a file name looks like a TIFF stack.
func IsStackFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".tif" || ext == ".tiff"
}

// MatchesChannel reports whether a file name contains any of the channel
// substrings. An empty channel list matches everything.
func MatchesChannel(name string, channels []string) bool {
	if len(channels) == 0 {
		return true
	}
	for _, ch := range channels {
		if strings.Contains(name, ch) {
			return true
		}
	}
	return false
}

// ShouldIgnore returns true if the given file name matches any of the exclude
// patterns. Patterns with glob characters use filepath.Match; patterns starting
// with '.' are suffix matches; anything else is a substring match.
func ShouldIgnore(name string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			if ok, err := filepath.Match(ex, name); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(name, ex) {
				return true
			}
		case strings.Contains(name, ex):
			return true
		}
	}
	return false
}

// SampleID derives the sample identifier from a mask file name: the first two
// underscore-separated tokens. Returns false when the name has fewer tokens.
func SampleID(name string) (string, bool) {
	parts := strings.SplitN(name, "_", 3)
	if len(parts) < 2 {
		return "", false
	}
	return parts[0] + "_" + parts[1], true
}

// TruncatePath shortens a path for table display, keeping the tail.
func TruncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-(maxLen-3):]
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".zproj_runs.db"
	}
	return filepath.Join(homeDir, ".zproj_runs.db")
}
