package sections

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical section names. Top is the sentinel in effect before any
// boundary row has been seen.
const (
	Top      = "Top"
	Filled   = "Filled Orders"
	Canceled = "Canceled Orders"
	Working  = "Working Orders"
	Rolling  = "Rolling Strategies"
)

// sectionAliases folds statement-variant section titles into their
// canonical names. The "Account Trade History" block of some statement
// exports carries the same rows as Filled Orders.
var sectionAliases = map[string]string{
	"Account Trade History": Filled,
}

// Normalize maps a detected section name through the alias table.
func Normalize(name string) string {
	if canonical, ok := sectionAliases[name]; ok {
		return canonical
	}
	return name
}

// Pattern binds a content matcher to a section name. An empty name means
// the row is recognized but the section is intentionally ignored.
type Pattern struct {
	Re   *regexp.Regexp
	Name string
}

// PatternTable is the ordered list of section-boundary matchers. First
// match wins, so more specific patterns (combined title+header rows) come
// before the bare-title fallbacks.
type PatternTable struct {
	patterns []Pattern
}

// Spec is one uncompiled pattern table entry, used when building a table
// from caller-supplied matchers.
type Spec struct {
	Expr string
	Name string
}

// DefaultSpecs returns the built-in matcher set. includeRolling controls
// whether the Rolling Strategies section is kept or recognized-and-ignored.
func DefaultSpecs(includeRolling bool) []Spec {
	rollingName := ""
	if includeRolling {
		rollingName = Rolling
	}
	return []Spec{
		// Combined title+column-header rows, matched against the joined row text.
		{`(?i)^,+exec\s*time.*spread.*side.*qty.*pos\s*effect.*symbol.*price.*net\s*price.*price\s*improvement.*order\s*type`, Filled},
		{`(?i)^notes,+time\s*canceled.*spread.*side.*qty.*pos\s*effect.*symbol.*price,+tif.*status`, Canceled},
		{`(?i)^notes,+time\s*placed.*spread.*side.*qty.*pos\s*effect.*symbol.*price,+tif.*mark.*status`, Working},
		{`(?i)^covered\s*call\s*position.*new\s*exp.*call\s*by.*begin.*order\s*price.*active\s*time`, rollingName},
		// Bare section-title rows.
		{`(?i)^\s*,*\s*filled\s*orders\s*,*\s*$`, Filled},
		{`(?i)^\s*,*\s*(canceled|cancelled)\s*orders\s*,*\s*$`, Canceled},
		{`(?i)^\s*,*\s*working\s*orders\s*,*\s*$`, Working},
		{`(?i)^\s*,*\s*rolling\s*strategies\s*,*\s*$`, rollingName},
		{`(?i)^\s*,*\s*account\s*trade\s*history`, "Account Trade History"},
		// Top-of-file metadata.
		{`(?i)^\s*,?\s*(account\s*statement|today's trade activity)`, Top},
	}
}

// NewPatternTable compiles an ordered matcher list into a table.
func NewPatternTable(specs []Spec) (*PatternTable, error) {
	t := &PatternTable{patterns: make([]Pattern, 0, len(specs))}
	for _, s := range specs {
		re, err := regexp.Compile(s.Expr)
		if err != nil {
			return nil, fmt.Errorf("invalid section pattern %q: %w", s.Expr, err)
		}
		t.patterns = append(t.patterns, Pattern{Re: re, Name: s.Name})
	}
	return t, nil
}

// DefaultPatternTable builds the built-in table. The built-in expressions
// always compile.
func DefaultPatternTable(includeRolling bool) *PatternTable {
	t, err := NewPatternTable(DefaultSpecs(includeRolling))
	if err != nil {
		panic(err)
	}
	return t
}

// Detect matches a raw row against the table. The row's cells are
// trimmed and rejoined with commas before matching, so patterns see the
// same text regardless of cell-internal padding. matched is true even
// when the section is an ignored one (name == "").
func (t *PatternTable) Detect(row []string) (name string, matched bool) {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = strings.TrimSpace(c)
	}
	joined := strings.Join(cells, ",")
	for _, p := range t.patterns {
		if p.Re.MatchString(joined) {
			return Normalize(p.Name), true
		}
	}
	return "", false
}

// Len reports the number of patterns in the table.
func (t *PatternTable) Len() int { return len(t.patterns) }

// LoadPatternFile reads a pattern override file: a JSON or YAML mapping
// from matcher expression to section name, where a null/empty name means
// "recognized but ignored". The resulting table wholly replaces the
// default one. Map files carry no order, so entries are applied longest
// expression first for determinism.
func LoadPatternFile(path string) (*PatternTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading section patterns file: %w", err)
	}

	raw := map[string]*string{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML section patterns: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing JSON section patterns: %w", err)
		}
	}

	exprs := make([]string, 0, len(raw))
	for expr := range raw {
		exprs = append(exprs, expr)
	}
	sort.Slice(exprs, func(i, j int) bool {
		if len(exprs[i]) != len(exprs[j]) {
			return len(exprs[i]) > len(exprs[j])
		}
		return exprs[i] < exprs[j]
	})

	specs := make([]Spec, 0, len(exprs))
	for _, expr := range exprs {
		name := ""
		if raw[expr] != nil {
			name = *raw[expr]
		}
		specs = append(specs, Spec{Expr: expr, Name: name})
	}
	return NewPatternTable(specs)
}
