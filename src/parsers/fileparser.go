package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/sections"
)

// Options is the configuration surface of a statement scan. The zero
// value is NOT the default; use DefaultOptions.
type Options struct {
	// IncludeRolling keeps the Rolling Strategies section instead of
	// recognizing and dropping it.
	IncludeRolling bool

	// MaxRows caps the number of CSV rows scanned per file; 0 scans all.
	MaxRows int

	// QtyUnsigned emits quantities as absolute values.
	QtyUnsigned bool

	// SkipEmptySections buffers each section's markers and drops the
	// whole section when no data row follows (default on).
	SkipEmptySections bool

	// StatusFilter suppresses TRIGGERED/REJECTED order-management rows
	// (default on).
	StatusFilter bool

	// GroupSort regroups batch output by section and sorts within each
	// section by best-available timestamp. Consumed by the batch
	// processor, not by the per-file scan.
	GroupSort bool

	// Patterns overrides the built-in section detection table for this
	// run. Nil selects the default table (honoring IncludeRolling).
	Patterns *sections.PatternTable
}

// DefaultOptions returns the standard scan configuration.
func DefaultOptions() Options {
	return Options{
		SkipEmptySections: true,
		StatusFilter:      true,
	}
}

func (o Options) patternTable() *sections.PatternTable {
	if o.Patterns != nil {
		return o.Patterns
	}
	return sections.DefaultPatternTable(o.IncludeRolling)
}

// Result is one file's scan output.
type Result struct {
	Records         []*models.Record
	SkippedSections int
	RowsScanned     int
}

// ParseFile scans one statement CSV into an ordered record list.
func ParseFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement file: %w", err)
	}
	defer f.Close()

	res, err := ParseReader(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return res, nil
}

// ParseReader runs the single-pass scan over a statement's row stream.
// Decoding is permissive: invalid bytes are replaced, never fatal.
func ParseReader(r io.Reader, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	text := strings.ToValidUTF8(string(data), "�")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := opts.patternTable()
	buffer := NewSectionBuffer(opts.SkipEmptySections)

	currentSection := sections.Top
	ignoring := false
	rowIndex := 0
	var out []*models.Record

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", rowIndex+1, err)
		}
		rowIndex++
		if opts.MaxRows > 0 && rowIndex > opts.MaxRows {
			rowIndex--
			break
		}

		raw := strings.Join(row, ",")
		secName, isBoundary := table.Detect(row)
		class := ClassifyRow(row)

		if isBoundary {
			if secName == "" {
				// Recognized but intentionally ignored: drop everything
				// until the next boundary.
				logger.L.Debug("Ignoring recognized section", "row", rowIndex)
				ignoring = true
				continue
			}
			ignoring = false
			currentSection = secName
			marker := models.NewSectionMarker(currentSection, rowIndex, raw)
			if class == ClassHeader {
				// Combined title+column-header row: one marker opens the
				// section and supplies its mapping.
				buffer.StartSectionWithHeader(marker, sections.MapHeaderToIndex(row), &out)
			} else {
				buffer.StartSection(marker, &out)
			}
			continue
		}

		if ignoring {
			continue
		}

		switch class {
		case ClassNoise:
			continue

		case ClassHeader:
			marker := models.NewSectionMarker(currentSection, rowIndex, raw)
			buffer.SetHeader(marker, sections.MapHeaderToIndex(row), &out)

		case ClassAmendment:
			// Amendment sub-rows only make sense inside a recognized,
			// headered section.
			if currentSection == sections.Top || buffer.ActiveMap() == nil {
				continue
			}
			rec := buildAmendment(row, currentSection, rowIndex, raw)
			buffer.Flush(&out)
			out = append(out, rec)

		case ClassData:
			m := buffer.ActiveMap()
			if m == nil {
				// No header seen for this section; the row cannot be
				// mapped to canonical fields.
				continue
			}
			rec := buildOrder(row, m, currentSection, rowIndex, raw, opts)
			if rec == nil {
				continue
			}
			buffer.Flush(&out)
			out = append(out, rec)
		}
	}

	buffer.Finish()

	return &Result{
		Records:         out,
		SkippedSections: buffer.Skipped(),
		RowsScanned:     rowIndex,
	}, nil
}
