package processors

import (
	"github.com/username/flatorders/src/models"
)

// Issue categories counted by Validate. The names double as the
// vocabulary of the diagnose report.
const (
	IssueMissingSymbol       = "missing_symbol"
	IssueMissingSide         = "missing_side"
	IssueMissingQty          = "missing_qty"
	IssueOptionMissingExp    = "option_missing_exp"
	IssueOptionMissingStrike = "option_missing_strike"
	IssueOptionMissingRight  = "option_missing_right"
	IssueUnknownAssetType    = "unknown_asset_type"
	IssueAmendMissingRef     = "amend_missing_ref"
	IssueAmendMissingStop    = "amend_missing_stop_price"
)

// Validate counts structural-completeness issues per category over a
// record list. Section markers are skipped; the counts are informational
// and never raised as errors.
func Validate(records []*models.Record) map[string]int {
	counts := map[string]int{}

	for _, rec := range records {
		if rec.IsMarker() {
			continue
		}

		if rec.Kind == models.KindAmendment {
			a := rec.Amendment
			if a == nil || a.Ref == nil || *a.Ref == "" {
				counts[IssueAmendMissingRef]++
			}
			if a == nil || a.StopPrice == nil {
				counts[IssueAmendMissingStop]++
			}
			continue
		}

		o := rec.Order
		if o == nil {
			continue
		}

		if o.Symbol == nil || *o.Symbol == "" {
			counts[IssueMissingSymbol]++
		}
		if o.Side == nil || *o.Side == "" {
			counts[IssueMissingSide]++
		}
		if o.Qty.IsNull() {
			counts[IssueMissingQty]++
		}

		switch {
		case o.AssetType != nil && *o.AssetType == models.AssetOption:
			opt := o.Option
			if opt == nil || opt.ExpDate == nil || *opt.ExpDate == "" {
				counts[IssueOptionMissingExp]++
			}
			if opt == nil || opt.Strike == nil {
				counts[IssueOptionMissingStrike]++
			}
			if opt == nil || opt.Right == nil || (*opt.Right != "PUT" && *opt.Right != "CALL") {
				counts[IssueOptionMissingRight]++
			}
		case o.AssetType == nil:
			counts[IssueUnknownAssetType]++
		}
	}

	return counts
}
