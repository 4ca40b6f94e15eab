package parsers

import (
	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/sections"
)

// SectionBuffer defers a section's marker records until the section is
// known to contain at least one data or amendment row. Sections that end
// (next boundary or EOF) with their markers still pending are dropped
// and counted as skipped. With buffering disabled every marker is
// emitted immediately and nothing is counted.
type SectionBuffer struct {
	enabled bool

	pendingSection *models.Record
	pendingHeader  *models.Record
	pendingMap     sections.HeaderMap
	hasPendingMap  bool

	liveMap sections.HeaderMap
	skipped int
}

func NewSectionBuffer(enabled bool) *SectionBuffer {
	return &SectionBuffer{enabled: enabled}
}

// ActiveMap is the header mapping data rows should be built with: the
// pending one when a header is buffered, otherwise the live one. Nil
// when no header has been seen for the current section.
func (b *SectionBuffer) ActiveMap() sections.HeaderMap {
	if b.hasPendingMap {
		return b.pendingMap
	}
	return b.liveMap
}

// StartSection handles a boundary-only row. Any previous section still
// pending is discarded and counted; the header map is cleared until a
// new header row arrives.
func (b *SectionBuffer) StartSection(marker *models.Record, out *[]*models.Record) {
	if !b.enabled {
		*out = append(*out, marker)
		b.liveMap = nil
		return
	}
	b.discardPending()
	b.pendingSection = marker
	b.liveMap = nil
}

// StartSectionWithHeader handles a combined title+column-header row: one
// marker that both opens the section and supplies its field mapping.
func (b *SectionBuffer) StartSectionWithHeader(marker *models.Record, m sections.HeaderMap, out *[]*models.Record) {
	if !b.enabled {
		*out = append(*out, marker)
		b.liveMap = m
		return
	}
	b.discardPending()
	b.pendingSection = marker
	b.pendingMap = m
	b.hasPendingMap = true
	b.liveMap = nil
}

// SetHeader handles a standalone column-header row within the current
// section. A second header before any data simply replaces the first.
func (b *SectionBuffer) SetHeader(marker *models.Record, m sections.HeaderMap, out *[]*models.Record) {
	if !b.enabled {
		*out = append(*out, marker)
		b.liveMap = m
		return
	}
	b.pendingHeader = marker
	b.pendingMap = m
	b.hasPendingMap = true
}

// Flush emits any buffered markers ahead of the first data row of their
// section and switches the buffered header mapping live.
func (b *SectionBuffer) Flush(out *[]*models.Record) {
	if !b.enabled {
		return
	}
	if b.pendingSection != nil {
		*out = append(*out, b.pendingSection)
		b.pendingSection = nil
	}
	if b.pendingHeader != nil {
		*out = append(*out, b.pendingHeader)
		b.pendingHeader = nil
	}
	if b.hasPendingMap {
		b.liveMap = b.pendingMap
		b.pendingMap = nil
		b.hasPendingMap = false
	}
}

// Finish counts a section whose markers are still pending at end of file.
func (b *SectionBuffer) Finish() {
	if !b.enabled {
		return
	}
	b.discardPending()
}

// Skipped is the number of sections suppressed for having no data rows.
func (b *SectionBuffer) Skipped() int { return b.skipped }

func (b *SectionBuffer) discardPending() {
	if b.pendingSection != nil || b.pendingHeader != nil {
		b.skipped++
	}
	b.pendingSection = nil
	b.pendingHeader = nil
	b.pendingMap = nil
	b.hasPendingMap = false
}
