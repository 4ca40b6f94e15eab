package writers

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/username/flatorders/src/models"
)

// xlsxColumns is the unified schema in sheet order. The option and
// amendment sub-structures are flattened into their own columns.
var xlsxColumns = []string{
	"section", "row_index", "source_file", "source_file_index",
	"exec_time", "time_canceled", "time_placed",
	"side", "qty", "pos_effect", "symbol",
	"exp", "strike", "type", "spread",
	"price", "net_price", "price_improvement",
	"order_type", "tif", "status", "notes", "mark",
	"event_type", "asset_type",
	"option_exp_date", "option_strike", "option_right",
	"amend_ref", "amend_stop_price", "amend_order_type", "amend_tif",
	"issues", "raw",
}

// WriteXLSX writes all records to a single-sheet workbook. Cell values
// come from the same flat JSON schema the other writers use, so the
// spreadsheet and the NDJSON output never disagree.
func WriteXLSX(path string, records []*models.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Records"
	f.SetSheetName(f.GetSheetName(0), sheet)

	header := make([]interface{}, len(xlsxColumns))
	for i, c := range xlsxColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing XLSX header: %w", err)
	}

	for i, rec := range records {
		flat, err := flatten(rec)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(xlsxColumns))
		for j, col := range xlsxColumns {
			row[j] = flat[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing XLSX cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing XLSX row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving XLSX workbook: %w", err)
	}
	return nil
}

// flatten reuses the record's JSON marshalling and spreads the nested
// option/amendment objects and the issue list into scalar columns.
func flatten(rec *models.Record) (map[string]interface{}, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("flattening record (row %d): %w", rec.RowIndex, err)
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("flattening record (row %d): %w", rec.RowIndex, err)
	}

	if opt, ok := m["option"].(map[string]interface{}); ok {
		m["option_exp_date"] = opt["exp_date"]
		m["option_strike"] = opt["strike"]
		m["option_right"] = opt["right"]
	}
	if amend, ok := m["amendment"].(map[string]interface{}); ok {
		m["amend_ref"] = amend["ref"]
		m["amend_stop_price"] = amend["stop_price"]
		m["amend_order_type"] = amend["order_type"]
		m["amend_tif"] = amend["tif"]
	}
	if issues, ok := m["issues"].([]interface{}); ok {
		joined := ""
		for i, issue := range issues {
			if i > 0 {
				joined += ";"
			}
			joined += fmt.Sprint(issue)
		}
		m["issues"] = joined
	}
	return m, nil
}
