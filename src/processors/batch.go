package processors

import (
	"errors"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/parsers"
	"github.com/username/flatorders/src/sections"
)

// File processing status values reported through the progress callback.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// FileProgress is one progress notification. It is informational only;
// nothing is consumed from the callback.
type FileProgress struct {
	FilePath      string
	FileIndex     int
	TotalFiles    int
	RecordsParsed int
	Status        string
	Error         string
}

// ProgressFunc receives per-file progress notifications.
type ProgressFunc func(FileProgress)

// BatchResult aggregates a multi-file run.
type BatchResult struct {
	RunID           string
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRecords    int
	SkippedSections int

	// ValidationIssues sums Validate's per-category counts across files.
	ValidationIssues map[string]int

	// FileErrors maps each failed input path to its error message.
	FileErrors map[string]string

	Records []*models.Record
}

// ErrNoInputFiles is returned when ProcessFiles gets an empty path list.
var ErrNoInputFiles = errors.New("no input files given")

// ProcessFiles runs the parser over each file in caller-supplied order,
// tags records with file provenance, and accumulates validation counts.
// A failing file is recorded and skipped; the batch never fails wholesale
// because one file failed.
func ProcessFiles(paths []string, opts parsers.Options, progress ProgressFunc) (*BatchResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputFiles
	}

	result := &BatchResult{
		RunID:            uuid.NewString(),
		TotalFiles:       len(paths),
		ValidationIssues: map[string]int{},
		FileErrors:       map[string]string{},
	}

	notify := func(p FileProgress) {
		if progress != nil {
			progress(p)
		}
	}

	for i, path := range paths {
		notify(FileProgress{FilePath: path, FileIndex: i, TotalFiles: len(paths), Status: StatusProcessing})

		res, err := parsers.ParseFile(path, opts)
		if err != nil {
			logger.L.Warn("Batch: file failed, continuing", "file", path, "error", err)
			result.FailedFiles++
			result.FileErrors[path] = err.Error()
			notify(FileProgress{FilePath: path, FileIndex: i, TotalFiles: len(paths), Status: StatusFailed, Error: err.Error()})
			continue
		}

		base := filepath.Base(path)
		idx := i
		for _, rec := range res.Records {
			rec.SourceFile = &base
			rec.SourceFileIndex = &idx
		}

		for category, count := range Validate(res.Records) {
			result.ValidationIssues[category] += count
		}

		result.Records = append(result.Records, res.Records...)
		result.TotalRecords += len(res.Records)
		result.SkippedSections += res.SkippedSections
		result.SuccessfulFiles++

		notify(FileProgress{FilePath: path, FileIndex: i, TotalFiles: len(paths), RecordsParsed: len(res.Records), Status: StatusCompleted})
	}

	if opts.GroupSort {
		result.Records = GroupAndSort(result.Records)
	}

	return result, nil
}

// sectionEmitOrder fixes the emission order of known sections after a
// group-and-sort pass; sections outside this list follow in first-seen
// order.
var sectionEmitOrder = []string{
	sections.Filled,
	sections.Canceled,
	sections.Working,
	sections.Rolling,
}

// GroupAndSort partitions records by canonical section, keeps only the
// first marker seen per section, and sorts each section's data records by
// best-available timestamp. Records without a resolvable timestamp keep
// their relative order after all timestamped records.
func GroupAndSort(records []*models.Record) []*models.Record {
	type group struct {
		marker *models.Record
		data   []*models.Record
	}

	groups := map[string]*group{}
	var seen []string

	for _, rec := range records {
		g, ok := groups[rec.Section]
		if !ok {
			g = &group{}
			groups[rec.Section] = g
			seen = append(seen, rec.Section)
		}
		if rec.IsMarker() {
			if g.marker == nil {
				g.marker = rec
			}
			continue
		}
		g.data = append(g.data, rec)
	}

	var order []string
	emitted := map[string]bool{}
	for _, name := range sectionEmitOrder {
		if _, ok := groups[name]; ok {
			order = append(order, name)
			emitted[name] = true
		}
	}
	for _, name := range seen {
		if !emitted[name] {
			order = append(order, name)
		}
	}

	out := make([]*models.Record, 0, len(records))
	for _, name := range order {
		g := groups[name]
		sort.SliceStable(g.data, func(i, j int) bool {
			ti, tj := g.data[i].BestTimestamp(), g.data[j].BestTimestamp()
			if ti == "" || tj == "" {
				// Untimed records sort after every timestamped record.
				return ti != "" && tj == ""
			}
			return ti < tj
		})
		if g.marker != nil {
			out = append(out, g.marker)
		}
		out = append(out, g.data...)
	}
	return out
}
