package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want RowClass
	}{
		{"empty row", []string{}, ClassNoise},
		{"blank cells", []string{"", "  ", ""}, ClassNoise},
		{"amendment ref", []string{"", "SELL", "REF # 1234", "45.50"}, ClassAmendment},
		{"amendment ref no hash", []string{"REF 99"}, ClassAmendment},
		{"filled header", []string{"Exec Time", "Spread", "Side", "Qty", "Symbol"}, ClassHeader},
		{"working header", []string{"Notes", "Time Placed", "Side", "Quantity", "Status"}, ClassHeader},
		{"data row", []string{"10/24/25 09:51:38", "STOCK", "SELL", "-75", "NEUP"}, ClassData},
		{"side and qty without time vocabulary", []string{"Side", "Qty"}, ClassData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRow(tt.row))
		})
	}
}
