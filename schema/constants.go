package schema

// Custom string types for type safety.
type (
	// ProjectionMode represents the reduction applied over the z window.
	ProjectionMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All projection modes supported.
const (
	MaxProjection  ProjectionMode = "max" // default
	MeanProjection ProjectionMode = "mean"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run-tracking backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// ValidProjectionModes lists all valid projection modes.
var ValidProjectionModes = map[ProjectionMode]struct{}{
	MaxProjection:  {},
	MeanProjection: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run-tracking backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Suffix returns the output filename suffix for the projection mode,
// e.g. "_maxproj" for max projections.
func (m ProjectionMode) Suffix() string {
	return "_" + string(m) + "proj"
}
