package constants

// Connection types supported by rdbms.OpenDbConnection.

const (
	ConnectionTypeMysql  = "mysql"
	ConnectionTypeSqlite = "sqlite"
)

// Propagation run values.

const (
	RunStatusRunning = "Running"
	RunStatusSuccess = "Success"
	RunStatusError   = "Error"

	TableStatusLoaded  = "Loaded"
	TableStatusSkipped = "Skipped"
	TableStatusError   = "Error"

	RunModeFull        = "full"
	RunModeIncremental = "incremental"

	// DefaultUnknownLabel is used where a descriptive source attribute is null.
	DefaultUnknownLabel = "Unknown"
)

// Integrity validation values.

const (
	SeverityWarning  = "Warning"
	SeverityError    = "Error"
	SeverityCritical = "Critical"

	IssueTypeOrphanDimension  = "OrphanDimension"
	IssueTypeMissingReference = "MissingReference"
	IssueTypeCheckError       = "CheckError"

	// SeverityErrorThreshold is the affected-row count at which a failed check
	// is reported as Error rather than Warning.
	SeverityErrorThreshold = 100
)

// Warehouse table names.

const (
	TableDimDate       = "dim_date"
	TableDimArtist     = "dim_artist"
	TableDimCollection = "dim_collection"
	TableDimLocation   = "dim_location"
	TableDimExhibitor  = "dim_exhibitor"
	TableDimPolicy     = "dim_policy"
	TableDimArtwork    = "dim_artwork"
	TableDimExhibition = "dim_exhibition"
	TableDimInsurance  = "dim_insurance"
	TableDimVisitor    = "dim_visitor"
	TableDimStaff      = "dim_staff"
	TableFactArtworkExhibition = "fact_artwork_exhibition"
	TableEtlRunLog             = "etl_run_log"
)

// General.

const (
	EnvVarPrefix          = "DW" // prefix for environment variables e.g. DW_SOURCE_DSN.
	TimeFormatDate        = "2006-01-02"
	TimeFormatTimestamp   = "2006-01-02 15:04:05" // ISO ordering so text comparison matches time ordering.
	DefaultCacheTTLMinutes = 5
	DefaultHTTPPort        = 8080
	DefaultScheduleMinutes = 30
)
