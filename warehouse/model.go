package warehouse

import (
	"database/sql"
	"time"
)

// OLTP source records. These structs are read-only views over the operational
// gallery database; nullable source columns stay nullable here so NULLs
// propagate as NULLs, never as empty strings.

type Artist struct {
	ID          int64
	FullName    string
	Nationality sql.NullString
	BirthYear   sql.NullInt64
	DeathYear   sql.NullInt64
}

type Collection struct {
	ID       int64
	Name     string
	Category sql.NullString
}

type Location struct {
	ID       int64
	Name     string
	Building sql.NullString
	Room     sql.NullString
}

type Exhibitor struct {
	ID      int64
	Name    string
	Country sql.NullString
	Kind    sql.NullString
}

type Policy struct {
	ID           int64
	Provider     string
	PolicyNumber sql.NullString
	CoverageType sql.NullString
}

type Artwork struct {
	ID             int64
	Title          string
	ArtistID       int64
	CreationYear   sql.NullInt64
	Medium         sql.NullString
	CollectionID   sql.NullInt64
	LocationID     sql.NullInt64
	EstimatedValue sql.NullFloat64
}

type Exhibition struct {
	ID          int64
	Name        string
	ExhibitorID int64
	StartDate   time.Time
	EndDate     sql.NullTime
}

type Insurance struct {
	ID            int64
	ArtworkID     int64
	PolicyID      sql.NullInt64
	InsuredAmount float64
	StartDate     time.Time
	EndDate       sql.NullTime
}

type Visitor struct {
	ID             int64
	FullName       string
	Email          sql.NullString
	MembershipType sql.NullString
}

type Staff struct {
	ID       int64
	FullName string
	JobTitle sql.NullString
	HireDate sql.NullTime
}

// ArtworkExhibition is one row of the OLTP join table driving the fact grain.
type ArtworkExhibition struct {
	ArtworkID    int64
	ExhibitionID int64
}

// Propagation results.

// TableResult describes the outcome of one propagation stage.
type TableResult struct {
	Table            string `json:"table"`
	RecordsProcessed int    `json:"recordsProcessed"`
	Status           string `json:"status"` // Loaded | Skipped | Error
	Error            string `json:"error,omitempty"`
}

// PropagationResult is the structured outcome of a full pipeline run. The
// caller always receives one of these, even on partial failure.
type PropagationResult struct {
	RunID             string        `json:"runId"`
	Mode              string        `json:"mode"`
	Status            string        `json:"status"` // Success | Error
	LoadedRecordCount int           `json:"loadedRecordCount"`
	DurationMs        int64         `json:"durationMs"`
	PerTableResults   []TableResult `json:"perTableResults"`
	Errors            []string      `json:"errors,omitempty"`
}

// Integrity validation results.

// IntegrityIssue describes one failed or errored integrity check.
type IntegrityIssue struct {
	Table           string `json:"table"`
	IssueType       string `json:"issueType"`
	Description     string `json:"description"`
	AffectedRecords int64  `json:"affectedRecords"`
	Severity        string `json:"severity"`
}

// IntegrityResult summarises a validation run.
type IntegrityResult struct {
	IsValid      bool             `json:"isValid"`
	TotalChecks  int              `json:"totalChecks"`
	PassedChecks int              `json:"passedChecks"`
	FailedChecks int              `json:"failedChecks"`
	Issues       []IntegrityIssue `json:"issues"`
	CheckedAt    time.Time        `json:"checkedAt"`
}
