package parsers

import (
	"regexp"
	"strings"

	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/sections"
)

var amendRefCapture = regexp.MustCompile(`(?i)\bREF\s*#?\s*(\d+)`)
var bareNumberRe = regexp.MustCompile(`^[-+]?\d+(\.\d+)?$`)

// Order-type and time-in-force tokens recognized inside amendment rows.
var amendOrderTypes = map[string]bool{
	"MKT": true, "LMT": true, "STP": true, "STPLMT": true,
	"STP LMT": true, "TRSTP": true, "MOC": true, "LOC": true,
}
var amendTIFs = map[string]bool{
	"DAY": true, "GTC": true, "EXT": true, "GTC EXT": true,
	"IOC": true, "FOK": true,
}

// buildOrder converts a classified data row into an order record using
// the active header map. It returns nil for rows that should produce no
// record: structurally empty rows and status-filtered rows.
func buildOrder(row []string, m sections.HeaderMap, section string, rowIndex int, raw string, opts Options) *models.Record {
	issues := []string{}

	side := upperPtr(cellValue(row, m, sections.FieldSide))
	qtyRaw := cellValue(row, m, sections.FieldQty)
	posEffect := upperPtr(cellValue(row, m, sections.FieldPosEffect))
	symbol := upperPtr(cellValue(row, m, sections.FieldSymbol))
	typ := upperPtr(cellValue(row, m, sections.FieldType))

	// Rows carrying none of the identifying tokens are structural filler
	// (separator lines, subtotals) and produce nothing.
	if side == nil && qtyRaw == nil && symbol == nil && typ == nil {
		return nil
	}

	status := upperPtr(cellValue(row, m, sections.FieldStatus))
	if opts.StatusFilter && status != nil {
		if strings.HasPrefix(*status, "TRIGGERED") || strings.HasPrefix(*status, "REJECTED") {
			return nil
		}
	}

	execTimeRaw := cellValue(row, m, sections.FieldExecTime)
	if execTimeRaw == nil && len(row) > 0 {
		// Some variants leave the exec-time column unmapped; the first
		// cell is the best available candidate.
		candidate := strings.TrimSpace(row[0])
		if !IsNullMarker(candidate) {
			execTimeRaw = &candidate
		}
	}

	o := &models.OrderFields{
		ExecTime:     ParseDateTime(execTimeRaw),
		TimeCanceled: ParseDateTime(cellValue(row, m, sections.FieldTimeCanceled)),
		TimePlaced:   ParseDateTime(cellValue(row, m, sections.FieldTimePlaced)),

		Side:      side,
		Qty:       ParseQty(qtyRaw, opts.QtyUnsigned, &issues),
		PosEffect: posEffect,
		Symbol:    symbol,

		Exp:    cellValue(row, m, sections.FieldExp),
		Strike: ParseFloat(cellValue(row, m, sections.FieldStrike), sections.FieldStrike, &issues),
		Type:   typ,
		Spread: upperPtr(cellValue(row, m, sections.FieldSpread)),

		Price:            ParseFloat(cellValue(row, m, sections.FieldPrice), sections.FieldPrice, &issues),
		NetPrice:         ParseFloat(cellValue(row, m, sections.FieldNetPrice), sections.FieldNetPrice, &issues),
		PriceImprovement: ParseFloat(cellValue(row, m, sections.FieldPriceImprovement), sections.FieldPriceImprovement, &issues),

		OrderType: upperPtr(cellValue(row, m, sections.FieldOrderType)),
		TIF:       upperPtr(cellValue(row, m, sections.FieldTIF)),
		Status:    status,
		Notes:     cellValue(row, m, sections.FieldNotes),
		Mark:      ParseFloat(cellValue(row, m, sections.FieldMark), sections.FieldMark, &issues),
	}

	o.AssetType = deriveAssetType(typ)
	o.EventType = deriveEventType(status, section)

	if o.AssetType != nil && *o.AssetType == models.AssetOption {
		o.Option = &models.OptionLeg{
			ExpDate: ParseOptionExpiry(o.Exp),
			Strike:  o.Strike,
			Right:   typ,
		}
	}

	return &models.Record{
		Kind:     models.KindOrder,
		Section:  section,
		RowIndex: rowIndex,
		Raw:      raw,
		Issues:   issues,
		Order:    o,
	}
}

// deriveAssetType classifies the row's type token.
func deriveAssetType(typ *string) *string {
	if typ == nil {
		return nil
	}
	switch *typ {
	case "CALL", "PUT":
		return models.StringPtr(models.AssetOption)
	case "STOCK":
		return models.StringPtr(models.AssetStock)
	case "ETF":
		return models.StringPtr(models.AssetETF)
	}
	return nil
}

// deriveEventType prefers an explicit status value; sections without a
// status column fall back to the section's own meaning.
func deriveEventType(status *string, section string) *string {
	if status != nil {
		switch {
		case *status == "FILLED":
			return models.StringPtr(models.EventFill)
		case *status == "CANCELED" || *status == "CANCELLED":
			return models.StringPtr(models.EventCancel)
		case strings.HasPrefix(*status, "REJECTED"):
			return models.StringPtr(models.EventCancel)
		default:
			return models.StringPtr(models.EventOther)
		}
	}
	switch section {
	case sections.Filled:
		return models.StringPtr(models.EventFill)
	case sections.Canceled:
		return models.StringPtr(models.EventCancel)
	case sections.Working:
		return models.StringPtr(models.EventWorking)
	}
	return models.StringPtr(models.EventOther)
}

// buildAmendment extracts the reference number, stop price, and revised
// order terms from an amendment sub-row. Missing pieces are left nil for
// the validator to count; they are not parse failures.
func buildAmendment(row []string, section string, rowIndex int, raw string) *models.Record {
	a := &models.Amendment{}
	for _, cell := range row {
		c := strings.TrimSpace(cell)
		if c == "" {
			continue
		}

		if a.Ref == nil {
			if m := amendRefCapture.FindStringSubmatch(c); m != nil {
				a.Ref = models.StringPtr(m[1])
				continue
			}
		}

		if a.StopPrice == nil && bareNumberRe.MatchString(c) {
			var issues []string
			a.StopPrice = ParseFloat(&c, "stop_price", &issues)
			continue
		}

		u := strings.ToUpper(c)
		if a.OrderType == nil && amendOrderTypes[u] {
			a.OrderType = models.StringPtr(u)
			continue
		}
		if a.TIF == nil && amendTIFs[u] {
			a.TIF = models.StringPtr(u)
		}
	}

	return &models.Record{
		Kind:      models.KindAmendment,
		Section:   section,
		RowIndex:  rowIndex,
		Raw:       raw,
		Issues:    []string{},
		Amendment: a,
	}
}
