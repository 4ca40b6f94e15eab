package models

import "encoding/json"

// RecordKind distinguishes the three record shapes that can come out of a
// statement scan. Which pointer field of Record is populated follows from
// the kind, so consumers never have to probe nullable fields.
type RecordKind uint8

const (
	KindSectionMarker RecordKind = iota
	KindOrder
	KindAmendment
)

// Event types derived for order records.
const (
	EventFill    = "fill"
	EventCancel  = "cancel"
	EventWorking = "working"
	EventOther   = "other"
	EventAmend   = "amend"
)

// Asset types derived from the statement's type column.
const (
	AssetOption = "OPTION"
	AssetStock  = "STOCK"
	AssetETF    = "ETF"
)

// IssueSectionHeader marks section and column-header marker records. It
// is the tag downstream tooling uses to skip non-data rows.
const IssueSectionHeader = "section_header"

// OptionLeg carries the option sub-structure of an order record.
type OptionLeg struct {
	ExpDate *string  `json:"exp_date"`
	Strike  *float64 `json:"strike"`
	Right   *string  `json:"right"`
}

// Amendment carries the revised order terms of an amendment sub-row.
type Amendment struct {
	Ref       *string  `json:"ref"`
	StopPrice *float64 `json:"stop_price"`
	OrderType *string  `json:"order_type"`
	TIF       *string  `json:"tif"`
}

// OrderFields holds the canonical typed fields of a data row. Exactly one
// of the three time fields is populated per section type.
type OrderFields struct {
	ExecTime     *string
	TimeCanceled *string
	TimePlaced   *string

	Side      *string
	Qty       Quantity
	PosEffect *string
	Symbol    *string

	Exp    *string
	Strike *float64
	Type   *string
	Spread *string

	Price            *float64
	NetPrice         *float64
	PriceImprovement *float64

	OrderType *string
	TIF       *string
	Status    *string
	Notes     *string
	Mark      *float64

	EventType *string
	AssetType *string
	Option    *OptionLeg
}

// Record is one emitted pipeline record: a section marker, an order row,
// or an amendment sub-row. Every record keeps its 1-based source row
// index and the verbatim row text for traceability.
type Record struct {
	Kind     RecordKind
	Section  string
	RowIndex int
	Raw      string
	Issues   []string

	Order     *OrderFields // set when Kind == KindOrder
	Amendment *Amendment   // set when Kind == KindAmendment

	// Batch provenance, set by the merger.
	SourceFile      *string
	SourceFileIndex *int
}

// NewSectionMarker builds the marker record emitted for a section
// boundary or column-header row.
func NewSectionMarker(section string, rowIndex int, raw string) *Record {
	return &Record{
		Kind:     KindSectionMarker,
		Section:  section,
		RowIndex: rowIndex,
		Raw:      raw,
		Issues:   []string{IssueSectionHeader},
	}
}

// IsMarker reports whether the record is a section/header marker rather
// than data.
func (r *Record) IsMarker() bool {
	return r.Kind == KindSectionMarker
}

// BestTimestamp picks the sort key for group-and-sort ordering:
// exec_time, then time_canceled, then time_placed; empty when none of the
// three resolved.
func (r *Record) BestTimestamp() string {
	if r.Order == nil {
		return ""
	}
	for _, t := range []*string{r.Order.ExecTime, r.Order.TimeCanceled, r.Order.TimePlaced} {
		if t != nil && *t != "" {
			return *t
		}
	}
	return ""
}

// flatRecord is the unified wire schema: one flat JSON object per record,
// all canonical keys always present, plus batch provenance when tagged.
type flatRecord struct {
	Section  string   `json:"section"`
	RowIndex int      `json:"row_index"`
	Raw      string   `json:"raw"`
	Issues   []string `json:"issues"`

	ExecTime     *string `json:"exec_time"`
	TimeCanceled *string `json:"time_canceled"`
	TimePlaced   *string `json:"time_placed"`

	Side      *string  `json:"side"`
	Qty       Quantity `json:"qty"`
	PosEffect *string  `json:"pos_effect"`
	Symbol    *string  `json:"symbol"`

	Exp    *string  `json:"exp"`
	Strike *float64 `json:"strike"`
	Type   *string  `json:"type"`
	Spread *string  `json:"spread"`

	Price            *float64 `json:"price"`
	NetPrice         *float64 `json:"net_price"`
	PriceImprovement *float64 `json:"price_improvement"`

	OrderType *string  `json:"order_type"`
	TIF       *string  `json:"tif"`
	Status    *string  `json:"status"`
	Notes     *string  `json:"notes"`
	Mark      *float64 `json:"mark"`

	EventType *string    `json:"event_type"`
	AssetType *string    `json:"asset_type"`
	Option    *OptionLeg `json:"option"`
	Amendment *Amendment `json:"amendment"`

	SourceFile      *string `json:"source_file,omitempty"`
	SourceFileIndex *int    `json:"source_file_index,omitempty"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	f := flatRecord{
		Section:         r.Section,
		RowIndex:        r.RowIndex,
		Raw:             r.Raw,
		Issues:          r.Issues,
		SourceFile:      r.SourceFile,
		SourceFileIndex: r.SourceFileIndex,
	}
	if f.Issues == nil {
		f.Issues = []string{}
	}
	if o := r.Order; o != nil {
		f.ExecTime = o.ExecTime
		f.TimeCanceled = o.TimeCanceled
		f.TimePlaced = o.TimePlaced
		f.Side = o.Side
		f.Qty = o.Qty
		f.PosEffect = o.PosEffect
		f.Symbol = o.Symbol
		f.Exp = o.Exp
		f.Strike = o.Strike
		f.Type = o.Type
		f.Spread = o.Spread
		f.Price = o.Price
		f.NetPrice = o.NetPrice
		f.PriceImprovement = o.PriceImprovement
		f.OrderType = o.OrderType
		f.TIF = o.TIF
		f.Status = o.Status
		f.Notes = o.Notes
		f.Mark = o.Mark
		f.EventType = o.EventType
		f.AssetType = o.AssetType
		f.Option = o.Option
	}
	if r.Kind == KindAmendment {
		amend := EventAmend
		f.EventType = &amend
		f.Amendment = r.Amendment
	}
	return json.Marshal(f)
}

// UnmarshalJSON rebuilds the tagged union from the flat wire schema. The
// kind is recovered from the marker issue tag and the amendment payload.
func (r *Record) UnmarshalJSON(data []byte) error {
	var f flatRecord
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*r = Record{
		Section:         f.Section,
		RowIndex:        f.RowIndex,
		Raw:             f.Raw,
		Issues:          f.Issues,
		SourceFile:      f.SourceFile,
		SourceFileIndex: f.SourceFileIndex,
	}

	for _, issue := range f.Issues {
		if issue == IssueSectionHeader {
			r.Kind = KindSectionMarker
			return nil
		}
	}

	if f.Amendment != nil || (f.EventType != nil && *f.EventType == EventAmend) {
		r.Kind = KindAmendment
		r.Amendment = f.Amendment
		if r.Amendment == nil {
			r.Amendment = &Amendment{}
		}
		return nil
	}

	r.Kind = KindOrder
	r.Order = &OrderFields{
		ExecTime:         f.ExecTime,
		TimeCanceled:     f.TimeCanceled,
		TimePlaced:       f.TimePlaced,
		Side:             f.Side,
		Qty:              f.Qty,
		PosEffect:        f.PosEffect,
		Symbol:           f.Symbol,
		Exp:              f.Exp,
		Strike:           f.Strike,
		Type:             f.Type,
		Spread:           f.Spread,
		Price:            f.Price,
		NetPrice:         f.NetPrice,
		PriceImprovement: f.PriceImprovement,
		OrderType:        f.OrderType,
		TIF:              f.TIF,
		Status:           f.Status,
		Notes:            f.Notes,
		Mark:             f.Mark,
		EventType:        f.EventType,
		AssetType:        f.AssetType,
		Option:           f.Option,
	}
	return nil
}

// StringPtr is a small helper for literal optional fields.
func StringPtr(s string) *string { return &s }

// FloatPtr is a small helper for literal optional fields.
func FloatPtr(v float64) *float64 { return &v }
