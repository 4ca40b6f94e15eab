package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/sections"
)

// IsNullMarker reports whether a cell carries one of the export's
// "no value" tokens: empty, tilde, or a lone hyphen.
func IsNullMarker(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "~" || t == "-"
}

// cellValue resolves a canonical field against a row through the active
// header map. Missing columns, out-of-bounds indices, and null markers
// all come back as nil.
func cellValue(row []string, m sections.HeaderMap, field string) *string {
	idx, ok := m[field]
	if !ok || idx < 0 || idx >= len(row) {
		return nil
	}
	v := strings.TrimSpace(row[idx])
	if IsNullMarker(v) {
		return nil
	}
	return &v
}

// ParseQty parses an integer quantity. Thousands separators and a
// redundant leading plus are stripped; a minus anywhere in the leading
// sign run makes the value negative ("-+50" is -50). Unparseable input
// records a qty_parse_failed issue and keeps the original trimmed text.
func ParseQty(raw *string, unsigned bool, issues *[]string) models.Quantity {
	if raw == nil {
		return models.Quantity{}
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return models.Quantity{}
	}

	clean := strings.ReplaceAll(s, ",", "")
	neg := false
	i := 0
	for i < len(clean) && (clean[i] == '+' || clean[i] == '-') {
		if clean[i] == '-' {
			neg = true
		}
		i++
	}

	n, err := strconv.ParseInt(clean[i:], 10, 64)
	if err != nil || i == len(clean) {
		*issues = append(*issues, "qty_parse_failed")
		return models.RawQuantity(s)
	}
	if neg {
		n = -n
	}
	q := models.IntQuantity(n)
	if unsigned {
		q = q.Abs()
	}
	return q
}

// ParseFloat parses a money/float cell. Dollar signs and commas are
// stripped and a bare leading decimal point gets a zero prefix. Failure
// records a "<field>_parse_failed" issue and yields null.
func ParseFloat(raw *string, field string, issues *[]string) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*issues = append(*issues, fmt.Sprintf("%s_parse_failed", field))
		return nil
	}
	return &v
}

// dateTimeLayouts are tried in order. Non-padded month/day layouts also
// accept zero-padded input.
var dateTimeLayouts = []string{
	"1/2/06 15:04:05",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"1/2/06",
	"1/2/2006",
	"2006-01-02",
}

const isoDateTime = "2006-01-02T15:04:05"

// ParseDateTime normalizes a calendar datetime to ISO-8601. Inputs that
// match none of the known layouts yield null without an issue; malformed
// dates are common in these exports and not diagnostic.
func ParseDateTime(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.Format(isoDateTime)
			return &out
		}
	}
	return nil
}

var monthCodes = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var expiryTokenRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3})\s+(\d{2}|\d{4})$`)

// ParseOptionExpiry accepts an ISO calendar date or a "17 OCT 25" style
// token. Two-digit years pivot at 69: <=69 is 20xx, >=70 is 19xx.
// Unrecognized month codes or impossible dates yield null.
func ParseOptionExpiry(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)

	if t, err := time.Parse("2006-01-02", s); err == nil {
		out := t.Format("2006-01-02")
		return &out
	}

	m := expiryTokenRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	month, ok := monthCodes[strings.ToUpper(m[2])]
	if !ok {
		return nil
	}
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		if year <= 69 {
			year += 2000
		} else {
			year += 1900
		}
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 32 JAN becomes 1 FEB); treat
	// that as malformed rather than silently shifting the date.
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return nil
	}
	out := t.Format("2006-01-02")
	return &out
}

// upperPtr uppercases an optional enum-like cell.
func upperPtr(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}
