package sections

import (
	"regexp"
	"sort"
	"strings"
)

// Canonical field names of the unified output schema.
const (
	FieldExecTime         = "exec_time"
	FieldTimeCanceled     = "time_canceled"
	FieldTimePlaced       = "time_placed"
	FieldSide             = "side"
	FieldQty              = "qty"
	FieldPosEffect        = "pos_effect"
	FieldSymbol           = "symbol"
	FieldExp              = "exp"
	FieldStrike           = "strike"
	FieldType             = "type"
	FieldSpread           = "spread"
	FieldPrice            = "price"
	FieldNetPrice         = "net_price"
	FieldPriceImprovement = "price_improvement"
	FieldOrderType        = "order_type"
	FieldTIF              = "tif"
	FieldStatus           = "status"
	FieldNotes            = "notes"
	FieldMark             = "mark"
)

// colAliases maps normalized header-cell text fragments to canonical
// field names. Matching is substring-based, so statement variants that
// decorate the column titles still resolve.
var colAliases = map[string]string{
	"exec time":      FieldExecTime,
	"execution time": FieldExecTime,
	"time":           FieldExecTime,
	"time canceled":  FieldTimeCanceled,
	"time cancelled": FieldTimeCanceled,
	"time placed":    FieldTimePlaced,

	"side":            FieldSide,
	"qty":             FieldQty,
	"quantity":        FieldQty,
	"pos effect":      FieldPosEffect,
	"position effect": FieldPosEffect,
	"symbol":          FieldSymbol,
	"underlying":      FieldSymbol,

	"exp":          FieldExp,
	"expiration":   FieldExp,
	"strike":       FieldStrike,
	"strike price": FieldStrike,
	"type":         FieldType,
	"spread":       FieldSpread,

	"price":             FieldPrice,
	"net price":         FieldNetPrice,
	"netprice":          FieldNetPrice,
	"price improvement": FieldPriceImprovement,
	"price_impr":        FieldPriceImprovement,

	"order type": FieldOrderType,
	"ordertype":  FieldOrderType,
	"tif":        FieldTIF,
	"time in force": FieldTIF,
	"status":     FieldStatus,

	"notes": FieldNotes,
	"note":  FieldNotes,
	"mark":  FieldMark,
}

// sortedAliases holds the alias keys longest first, so the most specific
// alias claims a header cell before any of its substrings can
// ("net price" before "price", "time canceled" before "time").
var sortedAliases = func() []string {
	keys := make([]string, 0, len(colAliases))
	for k := range colAliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeHeaderCell prepares a raw header cell for alias lookup: strip
// a leading byte-order mark, trim, collapse internal whitespace runs,
// lowercase.
func NormalizeHeaderCell(cell string) string {
	c := strings.TrimPrefix(cell, "\uFEFF")
	c = strings.TrimSpace(c)
	c = whitespaceRun.ReplaceAllString(c, " ")
	return strings.ToLower(c)
}

// HeaderMap maps canonical field names to column indices for the section
// currently in effect.
type HeaderMap map[string]int

// MapHeaderToIndex resolves a raw header row into a HeaderMap. Aliases
// are tried longest first per cell; once a canonical field has been
// claimed by an earlier column, later columns cannot overwrite it.
// Unresolvable cells are ignored.
func MapHeaderToIndex(header []string) HeaderMap {
	mapping := HeaderMap{}
	for i, cell := range header {
		nk := NormalizeHeaderCell(cell)
		if nk == "" {
			continue
		}
		for _, alias := range sortedAliases {
			if strings.Contains(nk, alias) {
				field := colAliases[alias]
				if _, claimed := mapping[field]; !claimed {
					mapping[field] = i
				}
				break
			}
		}
	}
	return mapping
}
