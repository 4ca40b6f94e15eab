package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatKeys is every key the wire schema promises on each record.
var flatKeys = []string{
	"section", "row_index", "raw", "issues",
	"exec_time", "time_canceled", "time_placed",
	"side", "qty", "pos_effect", "symbol",
	"exp", "strike", "type", "spread",
	"price", "net_price", "price_improvement",
	"order_type", "tif", "status", "notes", "mark",
	"event_type", "asset_type", "option", "amendment",
}

func TestMarshalFlatSchemaKeysAlwaysPresent(t *testing.T) {
	rec := &Record{
		Kind:     KindOrder,
		Section:  "Filled Orders",
		RowIndex: 5,
		Raw:      "a,b,c",
		Order: &OrderFields{
			Side:      StringPtr("SELL"),
			Qty:       IntQuantity(-75),
			Symbol:    StringPtr("NEUP"),
			EventType: StringPtr(EventFill),
		},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	m := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range flatKeys {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "source_file", "provenance is omitted until tagged")
	assert.NotContains(t, m, "source_file_index")

	idx := 2
	rec.SourceFile = StringPtr("statement.csv")
	rec.SourceFileIndex = &idx
	data, err = json.Marshal(rec)
	require.NoError(t, err)
	m = map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "source_file")
	assert.Contains(t, m, "source_file_index")
}

func TestMarshalNilIssuesBecomeEmptyList(t *testing.T) {
	rec := &Record{Kind: KindOrder, Section: "Filled Orders", Order: &OrderFields{}}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issues":[]`)
}

func TestOrderRoundTrip(t *testing.T) {
	rec := &Record{
		Kind:     KindOrder,
		Section:  "Working Orders",
		RowIndex: 8,
		Raw:      "raw,row",
		Issues:   []string{"qty_parse_failed"},
		Order: &OrderFields{
			TimePlaced: StringPtr("2025-10-23T10:00:00"),
			Side:       StringPtr("BUY"),
			Qty:        RawQuantity("5 contracts"),
			Symbol:     StringPtr("ABC"),
			Type:       StringPtr("CALL"),
			AssetType:  StringPtr(AssetOption),
			EventType:  StringPtr(EventWorking),
			Option: &OptionLeg{
				ExpDate: StringPtr("2025-10-17"),
				Strike:  FloatPtr(45),
				Right:   StringPtr("CALL"),
			},
		},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, KindOrder, back.Kind)
	require.NotNil(t, back.Order)
	assert.Equal(t, rec.Order.TimePlaced, back.Order.TimePlaced)
	assert.Equal(t, rec.Order.Qty, back.Order.Qty)
	assert.Equal(t, rec.Order.Option, back.Order.Option)
	assert.Equal(t, rec.Issues, back.Issues)
}

func TestMarkerRoundTrip(t *testing.T) {
	rec := NewSectionMarker("Filled Orders", 3, "Filled Orders")
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), IssueSectionHeader)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.IsMarker())
	assert.Equal(t, "Filled Orders", back.Section)
	assert.Equal(t, 3, back.RowIndex)
}

func TestAmendmentRoundTrip(t *testing.T) {
	rec := &Record{
		Kind:     KindAmendment,
		Section:  "Working Orders",
		RowIndex: 9,
		Issues:   []string{},
		Amendment: &Amendment{
			Ref:       StringPtr("1234"),
			StopPrice: FloatPtr(45.5),
			OrderType: StringPtr("STPLMT"),
			TIF:       StringPtr("GTC"),
		},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_type":"amend"`)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, KindAmendment, back.Kind)
	require.NotNil(t, back.Amendment)
	assert.Equal(t, "1234", *back.Amendment.Ref)
	assert.Equal(t, 45.5, *back.Amendment.StopPrice)
}

func TestBestTimestamp(t *testing.T) {
	rec := &Record{Kind: KindOrder, Order: &OrderFields{
		TimeCanceled: StringPtr("2025-10-24T10:00:00"),
		TimePlaced:   StringPtr("2025-10-23T09:00:00"),
	}}
	assert.Equal(t, "2025-10-24T10:00:00", rec.BestTimestamp())

	rec.Order.ExecTime = StringPtr("2025-10-22T08:00:00")
	assert.Equal(t, "2025-10-22T08:00:00", rec.BestTimestamp())

	assert.Equal(t, "", (&Record{Kind: KindOrder, Order: &OrderFields{}}).BestTimestamp())
	assert.Equal(t, "", NewSectionMarker("Filled Orders", 1, "").BestTimestamp())
}
