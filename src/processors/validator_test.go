package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/username/flatorders/src/models"
)

func TestValidateOrders(t *testing.T) {
	records := []*models.Record{
		models.NewSectionMarker("Filled Orders", 1, "Filled Orders"),
		{
			Kind:    models.KindOrder,
			Section: "Filled Orders",
			Order: &models.OrderFields{
				Side:      models.StringPtr("SELL"),
				Qty:       models.IntQuantity(-75),
				Symbol:    models.StringPtr("NEUP"),
				AssetType: models.StringPtr(models.AssetStock),
			},
		},
		{
			// Missing everything, unknown asset type.
			Kind:    models.KindOrder,
			Section: "Filled Orders",
			Order:   &models.OrderFields{},
		},
	}

	counts := Validate(records)
	assert.Equal(t, map[string]int{
		IssueMissingSymbol:    1,
		IssueMissingSide:      1,
		IssueMissingQty:       1,
		IssueUnknownAssetType: 1,
	}, counts)
}

func TestValidateOptionSubChecks(t *testing.T) {
	records := []*models.Record{
		{
			Kind:    models.KindOrder,
			Section: "Working Orders",
			Order: &models.OrderFields{
				Side:      models.StringPtr("BUY"),
				Qty:       models.IntQuantity(5),
				Symbol:    models.StringPtr("XYZ"),
				AssetType: models.StringPtr(models.AssetOption),
				Option: &models.OptionLeg{
					ExpDate: models.StringPtr("2025-10-17"),
					// Strike missing, right not PUT/CALL.
					Right: models.StringPtr("CAL"),
				},
			},
		},
		{
			Kind:    models.KindOrder,
			Section: "Working Orders",
			Order: &models.OrderFields{
				Side:      models.StringPtr("BUY"),
				Qty:       models.IntQuantity(5),
				Symbol:    models.StringPtr("XYZ"),
				AssetType: models.StringPtr(models.AssetOption),
				// No option leg at all.
			},
		},
	}

	counts := Validate(records)
	assert.Equal(t, map[string]int{
		IssueOptionMissingExp:    1,
		IssueOptionMissingStrike: 2,
		IssueOptionMissingRight:  2,
	}, counts)
}

func TestValidateAmendments(t *testing.T) {
	records := []*models.Record{
		{
			Kind:      models.KindAmendment,
			Section:   "Working Orders",
			Amendment: &models.Amendment{},
		},
		{
			Kind:    models.KindAmendment,
			Section: "Working Orders",
			Amendment: &models.Amendment{
				Ref:       models.StringPtr("1234"),
				StopPrice: models.FloatPtr(45.5),
			},
		},
	}

	counts := Validate(records)
	assert.Equal(t, map[string]int{
		IssueAmendMissingRef:  1,
		IssueAmendMissingStop: 1,
	}, counts)
}

func TestValidateEmpty(t *testing.T) {
	assert.Empty(t, Validate(nil))
	assert.Empty(t, Validate([]*models.Record{
		models.NewSectionMarker("Filled Orders", 1, ""),
	}))
}
