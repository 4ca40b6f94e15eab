package writers

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/flatorders/src/models"
)

func sampleRecords() []*models.Record {
	return []*models.Record{
		models.NewSectionMarker("Filled Orders", 3, "Filled Orders"),
		{
			Kind:     models.KindOrder,
			Section:  "Filled Orders",
			RowIndex: 5,
			Raw:      "10/24/25 09:51:38,STOCK,SELL,-75,NEUP",
			Order: &models.OrderFields{
				ExecTime:  models.StringPtr("2025-10-24T09:51:38"),
				Side:      models.StringPtr("SELL"),
				Qty:       models.IntQuantity(-75),
				Symbol:    models.StringPtr("NEUP"),
				Price:     models.FloatPtr(8.30),
				AssetType: models.StringPtr(models.AssetStock),
				EventType: models.StringPtr(models.EventFill),
			},
		},
		{
			Kind:     models.KindAmendment,
			Section:  "Working Orders",
			RowIndex: 9,
			Amendment: &models.Amendment{
				Ref:       models.StringPtr("1234"),
				StopPrice: models.FloatPtr(45.5),
			},
		},
	}
}

func TestNDJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, sampleRecords()))
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("\n")))

	back, err := ReadNDJSON(&buf)
	require.NoError(t, err)
	require.Len(t, back, 3)
	assert.True(t, back[0].IsMarker())
	assert.Equal(t, models.KindOrder, back[1].Kind)
	assert.Equal(t, "NEUP", *back[1].Order.Symbol)
	assert.Equal(t, models.KindAmendment, back[2].Kind)
	assert.Equal(t, "1234", *back[2].Amendment.Ref)
}

func TestReadNDJSONMalformed(t *testing.T) {
	_, err := ReadNDJSON(bytes.NewReader([]byte("{\"section\":\"x\"}\nnot json\n")))
	assert.Error(t, err)
}

func TestWriteJSONArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONArray(&buf, sampleRecords(), false))

	var arr []json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &arr))
	assert.Len(t, arr, 3)

	buf.Reset()
	require.NoError(t, WriteJSONArray(&buf, nil, true))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	require.NoError(t, WriteXLSX(path, sampleRecords()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Records", "A1")
	require.NoError(t, err)
	assert.Equal(t, "section", v)

	v, err = f.GetCellValue("Records", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Filled Orders", v)

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}
