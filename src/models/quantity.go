package models

import (
	"encoding/json"
	"strconv"
)

// Quantity is either a parsed integer quantity or, when the source text
// could not be parsed, the original trimmed text. A zero Quantity is null.
type Quantity struct {
	Value int64
	Raw   string
	Valid bool // Value is meaningful
}

func IntQuantity(v int64) Quantity {
	return Quantity{Value: v, Valid: true}
}

func RawQuantity(raw string) Quantity {
	return Quantity{Raw: raw}
}

func (q Quantity) IsNull() bool {
	return !q.Valid && q.Raw == ""
}

// Abs returns the unsigned form of a parsed quantity. Raw and null
// quantities pass through unchanged.
func (q Quantity) Abs() Quantity {
	if q.Valid && q.Value < 0 {
		q.Value = -q.Value
	}
	return q
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.Valid {
		return []byte(strconv.FormatInt(q.Value, 10)), nil
	}
	if q.Raw != "" {
		return json.Marshal(q.Raw)
	}
	return []byte("null"), nil
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*q = Quantity{}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*q = Quantity{Value: n, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*q = Quantity{Raw: s}
	return nil
}
