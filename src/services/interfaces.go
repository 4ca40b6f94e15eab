package services

import (
	"errors"
	"io"

	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/parsers"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrParsingFailed  = errors.New("statement parsing failed")
	ErrResultNotFound = errors.New("conversion result not found")
)

// SectionSummary is the per-section record count of a conversion.
type SectionSummary struct {
	Section string `json:"section"`
	Records int    `json:"records"`
}

// ConvertResult is the full outcome of one uploaded statement.
type ConvertResult struct {
	ID               string           `json:"id"`
	SourceFile       string           `json:"source_file"`
	TotalRecords     int              `json:"total_records"`
	RowsScanned      int              `json:"rows_scanned"`
	SkippedSections  int              `json:"skipped_sections"`
	Sections         []SectionSummary `json:"sections"`
	ValidationIssues map[string]int   `json:"validation_issues"`
	Records          []*models.Record `json:"records"`
}

// ConvertService turns uploaded statements into flat records and keeps
// recent results retrievable by id.
type ConvertService interface {
	ProcessUpload(fileReader io.Reader, filename string, opts parsers.Options) (*ConvertResult, error)
	GetResult(id string) (*ConvertResult, error)
}
