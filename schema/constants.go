package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the series store.
	DatabaseBackend string

	// ResultType discriminates the shape of a series function result.
	ResultType string

	// ReplaceEmptyStrategy tells how empty values get replaced.
	ReplaceEmptyStrategy string

	// ChartNavigation tells how charts inside a section are navigated.
	ChartNavigation string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All function result types.
const (
	BasicResult  ResultType = "basic"
	PointsResult ResultType = "points"
)

// All replaceEmpty strategies.
const (
	UseFallbackStrategy ReplaceEmptyStrategy = "useFallback" // default
	UsePreviousStrategy ReplaceEmptyStrategy = "usePrevious"
)

// All chart navigation modes.
const (
	IndependentNavigation         ChartNavigation = "independent" // default
	SharedWithinSectionNavigation ChartNavigation = "sharedWithinSection"
)

// Series source and builder discriminants used in chart definitions.
const (
	ExternalSourceType = "external"
	StaticBuilderType  = "static"
	DynamicBuilderType = "dynamic"

	// StoreSourceName is the external data source backed by the SQL series store.
	StoreSourceName = "store"
)

// DefaultPointDuration is the point duration assumed when none is given.
const DefaultPointDuration int64 = 5

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidChartNavigations lists all valid chart navigation modes.
var ValidChartNavigations = map[ChartNavigation]struct{}{
	IndependentNavigation:         {},
	SharedWithinSectionNavigation: {},
}
