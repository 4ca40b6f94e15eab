package writers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/username/flatorders/src/models"
)

// WriteNDJSON streams records as newline-delimited JSON, one flat object
// per record. Write failures propagate to the caller.
func WriteNDJSON(w io.Writer, records []*models.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing NDJSON record (row %d): %w", rec.RowIndex, err)
		}
	}
	return nil
}

// WriteJSONArray writes the record list as one JSON array, optionally
// indented.
func WriteJSONArray(w io.Writer, records []*models.Record, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if records == nil {
		records = []*models.Record{}
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("writing JSON array: %w", err)
	}
	return nil
}

// ReadNDJSON loads records back from a newline-delimited JSON stream.
// Blank lines are skipped; a malformed line is an error.
func ReadNDJSON(r io.Reader) ([]*models.Record, error) {
	dec := json.NewDecoder(r)
	var records []*models.Record
	for {
		var rec models.Record
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("reading NDJSON record %d: %w", len(records)+1, err)
		}
		records = append(records, &rec)
	}
	return records, nil
}
