package parsers

import (
	"regexp"
	"strings"

	"github.com/username/flatorders/src/sections"
)

// RowClass is the role a scanned row plays inside its section. Section
// boundaries are detected separately by the pattern table; a row can be
// both a boundary and a column header at once.
type RowClass uint8

const (
	ClassNoise RowClass = iota
	ClassAmendment
	ClassHeader
	ClassData
)

// amendmentRefRe recognizes the "REF # 12345" token that marks an
// amendment sub-row refining the preceding order.
var amendmentRefRe = regexp.MustCompile(`(?i)\bREF\s*#?\s*\d+`)

// headerTimeVocabulary are the time-column titles whose presence (with a
// side and quantity column) identifies a column-header row.
var headerTimeVocabulary = []string{
	"exec time",
	"execution time",
	"time canceled",
	"time cancelled",
	"time placed",
}

// ClassifyRow decides a row's role. Evaluation order matters: blank rows
// are noise, an amendment-reference token beats everything else, then the
// header vocabulary check, and anything left is data.
func ClassifyRow(row []string) RowClass {
	blank := true
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			blank = false
			break
		}
	}
	if blank {
		return ClassNoise
	}

	for _, c := range row {
		if amendmentRefRe.MatchString(c) {
			return ClassAmendment
		}
	}

	if isHeaderRow(row) {
		return ClassHeader
	}
	return ClassData
}

// isHeaderRow checks for time-column vocabulary plus both a side and a
// quantity column signature.
func isHeaderRow(row []string) bool {
	hasTime, hasSide, hasQty := false, false, false
	for _, c := range row {
		nk := sections.NormalizeHeaderCell(c)
		if nk == "" {
			continue
		}
		if !hasTime {
			for _, vocab := range headerTimeVocabulary {
				if strings.Contains(nk, vocab) {
					hasTime = true
					break
				}
			}
		}
		if strings.Contains(nk, "side") {
			hasSide = true
		}
		if strings.Contains(nk, "qty") || strings.Contains(nk, "quantity") {
			hasQty = true
		}
	}
	return hasTime && hasSide && hasQty
}
