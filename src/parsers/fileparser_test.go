package parsers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/sections"
)

// statementCSV is a condensed statement export: top metadata, a Filled
// section with a separate title and header, then combined title+header
// rows for Canceled (no data) and Working (one order plus an amendment).
const statementCSV = `Account Statement for user
,,,,,
Filled Orders
Exec Time,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,Net Price,Price Improvement,Order Type
10/24/25 09:51:38,STOCK,SELL,-75,TO CLOSE,NEUP,,,STOCK,8.30,8.30,-,MKT
Notes,Time Canceled,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,TIF,Status
Notes,Time Placed,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,TIF,Mark,Status
,10/23/25 10:00:00,STOCK,BUY,+100,TO OPEN,ABC,,,STOCK,5.00,DAY,5.01,WORKING
,SELL,REF # 1234,45.50,STPLMT,GTC
`

func TestParseReaderStatement(t *testing.T) {
	res, err := ParseReader(strings.NewReader(statementCSV), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 9, res.RowsScanned)
	// Top metadata and the dataless Canceled section are suppressed.
	assert.Equal(t, 2, res.SkippedSections)
	require.Len(t, res.Records, 6)

	// Filled: title marker, header marker, then the order.
	assert.True(t, res.Records[0].IsMarker())
	assert.Equal(t, sections.Filled, res.Records[0].Section)
	assert.Equal(t, 3, res.Records[0].RowIndex)
	assert.True(t, res.Records[1].IsMarker())
	assert.Equal(t, 4, res.Records[1].RowIndex)

	filled := res.Records[2]
	require.Equal(t, models.KindOrder, filled.Kind)
	o := filled.Order
	require.NotNil(t, o)
	assert.Equal(t, "2025-10-24T09:51:38", *o.ExecTime)
	assert.Equal(t, "SELL", *o.Side)
	assert.Equal(t, int64(-75), o.Qty.Value)
	assert.Equal(t, "TO CLOSE", *o.PosEffect)
	assert.Equal(t, "NEUP", *o.Symbol)
	assert.Equal(t, 8.30, *o.Price)
	assert.Equal(t, 8.30, *o.NetPrice)
	assert.Nil(t, o.PriceImprovement, "lone hyphen is a null marker")
	assert.Equal(t, "MKT", *o.OrderType)
	assert.Equal(t, models.AssetStock, *o.AssetType)
	assert.Equal(t, models.EventFill, *o.EventType, "status-less Filled row falls back to the section")
	assert.Empty(t, filled.Issues)

	// Working: combined title+header marker, the order, the amendment.
	assert.True(t, res.Records[3].IsMarker())
	assert.Equal(t, sections.Working, res.Records[3].Section)

	working := res.Records[4]
	require.Equal(t, models.KindOrder, working.Kind)
	assert.Equal(t, "2025-10-23T10:00:00", *working.Order.TimePlaced)
	assert.Nil(t, working.Order.ExecTime)
	assert.Equal(t, int64(100), working.Order.Qty.Value)
	assert.Equal(t, 5.01, *working.Order.Mark)
	assert.Equal(t, "WORKING", *working.Order.Status)
	assert.Equal(t, models.EventOther, *working.Order.EventType, "explicit status beats the section fallback")

	amend := res.Records[5]
	require.Equal(t, models.KindAmendment, amend.Kind)
	assert.Equal(t, sections.Working, amend.Section)
	require.NotNil(t, amend.Amendment)
	assert.Equal(t, "1234", *amend.Amendment.Ref)
	assert.Equal(t, 45.50, *amend.Amendment.StopPrice)
	assert.Equal(t, "STPLMT", *amend.Amendment.OrderType)
	assert.Equal(t, "GTC", *amend.Amendment.TIF)
}

func TestParseReaderKeepEmptySections(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipEmptySections = false

	res, err := ParseReader(strings.NewReader(statementCSV), opts)
	require.NoError(t, err)

	assert.Equal(t, 0, res.SkippedSections)
	// Every marker is emitted immediately: Top, Filled title, Filled
	// header, Canceled, Working, plus the two orders and the amendment.
	require.Len(t, res.Records, 8)
	assert.Equal(t, sections.Top, res.Records[0].Section)
	assert.Equal(t, sections.Canceled, res.Records[3].Section)
}

func TestParseReaderStatusFilter(t *testing.T) {
	csvText := `Notes,Time Placed,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,TIF,Mark,Status
,10/23/25 10:00:00,STOCK,BUY,+100,TO OPEN,ABC,,,STOCK,5.00,DAY,5.01,TRIGGERED + 1 more
,10/23/25 10:05:00,STOCK,BUY,+10,TO OPEN,DEF,,,STOCK,6.00,DAY,6.01,REJECTED: account
,10/23/25 10:10:00,STOCK,BUY,+20,TO OPEN,GHI,,,STOCK,7.00,DAY,7.01,WORKING
`
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 2) // marker + the WORKING row
	assert.Equal(t, "GHI", *res.Records[1].Order.Symbol)

	opts := DefaultOptions()
	opts.StatusFilter = false
	res, err = ParseReader(strings.NewReader(csvText), opts)
	require.NoError(t, err)
	require.Len(t, res.Records, 4)
	assert.Equal(t, models.EventCancel, *res.Records[2].Order.EventType, "REJECTED maps to cancel")
}

func TestParseReaderMaxRows(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRows = 4

	res, err := ParseReader(strings.NewReader(statementCSV), opts)
	require.NoError(t, err)
	assert.Equal(t, 4, res.RowsScanned)
	assert.Empty(t, res.Records, "scan stopped before the first data row")
	assert.Equal(t, 2, res.SkippedSections)
}

func TestParseReaderRollingSections(t *testing.T) {
	csvText := `Rolling Strategies
Exec Time,Side,Qty,Symbol,Type
10/24/25 09:00:00,BUY,5,XYZ,CALL
`
	// Recognized and dropped by default, including everything under it.
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 0, res.SkippedSections)

	opts := DefaultOptions()
	opts.IncludeRolling = true
	res, err = ParseReader(strings.NewReader(csvText), opts)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, sections.Rolling, res.Records[0].Section)

	order := res.Records[2]
	require.Equal(t, models.KindOrder, order.Kind)
	assert.Equal(t, models.AssetOption, *order.Order.AssetType)
	require.NotNil(t, order.Order.Option)
	assert.Equal(t, "CALL", *order.Order.Option.Right)
	assert.Nil(t, order.Order.Option.ExpDate)
}

func TestParseReaderHeaderlessDataDropped(t *testing.T) {
	csvText := `Filled Orders
10/24/25 09:51:38,STOCK,SELL,-75,TO CLOSE,NEUP
`
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.SkippedSections)
}

func TestParseReaderStructurallyEmptyRowsDropped(t *testing.T) {
	csvText := `Exec Time,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,Net Price,Price Improvement,Order Type
,,,,,,,,,,,TOTAL,
10/24/25 09:51:38,STOCK,SELL,-75,TO CLOSE,NEUP,,,STOCK,8.30,8.30,-,MKT
`
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "NEUP", *res.Records[1].Order.Symbol)
}

func TestParseReaderInvalidUTF8Tolerated(t *testing.T) {
	csvText := "Exec Time,Side,Qty,Symbol,Type\n10/24/25 09:51:38,SELL,-75,NE\xffUP,STOCK\n"
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Contains(t, *res.Records[1].Order.Symbol, "�")
}

func TestParseReaderQtyParseFailure(t *testing.T) {
	csvText := `Exec Time,Side,Qty,Symbol,Type
10/24/25 09:51:38,SELL,5 contracts,NEUP,STOCK
`
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	order := res.Records[1]
	assert.Equal(t, []string{"qty_parse_failed"}, order.Issues)
	assert.False(t, order.Order.Qty.Valid)
	assert.Equal(t, "5 contracts", order.Order.Qty.Raw)
}

func TestParseReaderEmptySectionSkippedOnce(t *testing.T) {
	// Title row plus header row, zero data rows before the next boundary:
	// nothing emitted, one skip counted.
	csvText := `Filled Orders
Exec Time,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,Net Price,Price Improvement,Order Type
Notes,Time Placed,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,TIF,Mark,Status
,10/23/25 10:00:00,STOCK,BUY,+100,TO OPEN,ABC,,,STOCK,5.00,DAY,5.01,WORKING
`
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.SkippedSections)
	require.Len(t, res.Records, 2)
	assert.Equal(t, sections.Working, res.Records[0].Section)
}

func TestParseReaderFilledEndToEndRow(t *testing.T) {
	csvText := `,,Exec Time,Spread,Side,Qty,Pos Effect,Symbol,Exp,Strike,Type,Price,Net Price,Price Improvement,Order Type
,,10/24/25 09:51:38,STOCK,SELL,-75,TO CLOSE,NEUP,,,STOCK,8.30,8.30,-,MKT
`
	res, err := ParseReader(strings.NewReader(csvText), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	rec := res.Records[1]
	require.Equal(t, models.KindOrder, rec.Kind)
	assert.Equal(t, sections.Filled, rec.Section)
	o := rec.Order
	assert.Equal(t, "SELL", *o.Side)
	assert.Equal(t, int64(-75), o.Qty.Value)
	assert.Equal(t, "NEUP", *o.Symbol)
	assert.Equal(t, models.AssetStock, *o.AssetType)
	assert.Equal(t, 8.30, *o.Price)
	assert.Nil(t, o.PriceImprovement)
	assert.Equal(t, models.EventFill, *o.EventType)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(statementCSV), 0o600))

	res, err := ParseFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.Records, 6)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	assert.Error(t, err)
}
