package contract

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/csalatca/zproj/schema"
)

// Default values for configuration.
const (
	DefaultZRange      = 1
	MaxZRange          = 100
	DefaultPrecision   = 1
	DefaultOutputDir   = "projection"
	DefaultEpochs      = 100
	DefaultLearnRate   = 0.1
	DefaultWeightDecay = 0.0001
	DefaultPythonBin   = "python"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig validates and populates the profiling config.
func ProcessProfilingConfig(profile *ProfileConfig, prefix string) error {
	if prefix == "" {
		profile.Enabled = false
		return nil
	}
	if strings.ContainsAny(prefix, " \t") {
		return fmt.Errorf("profile prefix must not contain whitespace: %q", prefix)
	}
	profile.Enabled = true
	profile.Prefix = prefix
	return nil
}

// Config holds the runtime configuration for a zproj invocation.
// This struct remains the "final, validated" config.
type Config struct {
	InputDir   string
	OutputDir  string
	Channels   []string
	Excludes   []string
	Mode       schema.ProjectionMode
	ZRange     int
	Frames     int // override for T when file metadata is absent (0 = use metadata)
	Slices     int // override for Z when file metadata is absent (0 = use metadata)
	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Detail     bool
	DryRun     bool
	Width      int // Terminal width override (0 = auto-detect)

	RefDir string
	SegDir string

	TrainDir        string
	TestDir         string
	PretrainedModel string
	ChannelIndex    int
	LearningRate    float64
	WeightDecay     float64
	Epochs          int
	PythonBin       string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputDirStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Detail         bool   `mapstructure:"detail"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Fields from projectCmd.Flags() ---
	Channel   string `mapstructure:"channel"`
	Exclude   string `mapstructure:"exclude"`
	Mode      string `mapstructure:"mode"`
	ZRange    int    `mapstructure:"z-range"`
	Frames    int    `mapstructure:"frames"`
	Slices    int    `mapstructure:"slices"`
	Workers   int    `mapstructure:"workers"`
	OutputDir string `mapstructure:"output-dir"`
	DryRun    bool   `mapstructure:"dry-run"`

	// --- Fields from evaluateCmd.Flags() ---
	RefDir string `mapstructure:"ref-dir"`
	SegDir string `mapstructure:"seg-dir"`

	// --- Fields from segmentCmd.Flags() ---
	TrainDir        string  `mapstructure:"train-dir"`
	TestDir         string  `mapstructure:"test-dir"`
	PretrainedModel string  `mapstructure:"pretrained-model"`
	ChannelIndex    int     `mapstructure:"channel-index"`
	LearningRate    float64 `mapstructure:"learning-rate"`
	WeightDecay     float64 `mapstructure:"weight-decay"`
	Epochs          int     `mapstructure:"epochs"`
	PythonBin       string  `mapstructure:"python"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Channels != nil {
		clone.Channels = make([]string, len(c.Channels))
		copy(clone.Channels, c.Channels)
	}
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateProjectionInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	// Evaluate and segment parameters are carried through raw; their
	// command-specific validation happens in Revalidate* at command time.
	cfg.RefDir = input.RefDir
	cfg.SegDir = input.SegDir
	cfg.TrainDir = input.TrainDir
	cfg.TestDir = input.TestDir
	cfg.PretrainedModel = input.PretrainedModel
	cfg.ChannelIndex = input.ChannelIndex
	cfg.LearningRate = input.LearningRate
	cfg.WeightDecay = input.WeightDecay
	cfg.Epochs = input.Epochs
	cfg.PythonBin = input.PythonBin

	return nil
}

// validateSimpleInputs handles the flat fields shared by all commands.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output mode '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	if input.Precision < 0 || input.Precision > 10 {
		return fmt.Errorf("precision must be between 0 and 10, got %d", input.Precision)
	}
	cfg.Precision = input.Precision
	cfg.Detail = input.Detail
	cfg.Width = input.Width

	switch strings.ToLower(input.Color) {
	case "yes", "true", "1", "":
		cfg.UseColors = true
	case "no", "false", "0":
		cfg.UseColors = false
	default:
		return fmt.Errorf("invalid color setting '%s'. must be yes/no/true/false/1/0", input.Color)
	}

	return nil
}

// validateProjectionInputs handles fields specific to the projection pipeline.
func validateProjectionInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputDir = input.InputDirStr
	if cfg.InputDir == "" {
		cfg.InputDir = "."
	}
	if info, err := os.Stat(cfg.InputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("input directory not found: %s", cfg.InputDir)
	}

	cfg.Mode = schema.ProjectionMode(strings.ToLower(input.Mode))
	if _, ok := schema.ValidProjectionModes[cfg.Mode]; !ok {
		return fmt.Errorf("invalid projection mode '%s'. must be max or mean", input.Mode)
	}

	if input.ZRange < 0 || input.ZRange > MaxZRange {
		return fmt.Errorf("z-range must be between 0 and %d, got %d", MaxZRange, input.ZRange)
	}
	cfg.ZRange = input.ZRange

	if input.Frames < 0 || input.Slices < 0 {
		return fmt.Errorf("frames and slices overrides must be non-negative")
	}
	cfg.Frames = input.Frames
	cfg.Slices = input.Slices

	if input.Workers < 1 {
		cfg.Workers = DefaultWorkers
	} else {
		cfg.Workers = input.Workers
	}

	cfg.Channels = splitList(input.Channel)
	cfg.Excludes = splitList(input.Exclude)

	cfg.OutputDir = input.OutputDir
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	cfg.DryRun = input.DryRun

	return nil
}

// validateBackendConfigs validates the run-tracking backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(input.StoreBackend)
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.StoreBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// RevalidateEvaluate re-checks the parameters the evaluate command needs.
// Used by both the CLI command and the MCP tool entrypoints.
func RevalidateEvaluate(cfg *Config) error {
	if cfg.RefDir == "" || cfg.SegDir == "" {
		return fmt.Errorf("both --ref-dir and --seg-dir are required")
	}
	for _, dir := range []string{cfg.RefDir, cfg.SegDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("mask directory not found: %s", dir)
		}
	}
	return nil
}

// RevalidateSegment re-checks the parameters the segment command needs.
func RevalidateSegment(cfg *Config) error {
	if cfg.TrainDir == "" {
		return fmt.Errorf("--train-dir is required")
	}
	if info, err := os.Stat(cfg.TrainDir); err != nil || !info.IsDir() {
		return fmt.Errorf("training directory not found: %s", cfg.TrainDir)
	}
	if cfg.TestDir != "" {
		if info, err := os.Stat(cfg.TestDir); err != nil || !info.IsDir() {
			return fmt.Errorf("test directory not found: %s", cfg.TestDir)
		}
	}
	if cfg.PretrainedModel == "" {
		return fmt.Errorf("--pretrained-model is required")
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", cfg.LearningRate)
	}
	if cfg.WeightDecay < 0 {
		return fmt.Errorf("weight decay must be non-negative, got %g", cfg.WeightDecay)
	}
	if cfg.Epochs < 1 {
		return fmt.Errorf("epochs must be at least 1, got %d", cfg.Epochs)
	}
	if cfg.ChannelIndex < 0 {
		return fmt.Errorf("channel index must be non-negative, got %d", cfg.ChannelIndex)
	}
	if cfg.PythonBin == "" {
		cfg.PythonBin = DefaultPythonBin
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// splitList splits a comma-separated flag value into trimmed, non-empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
