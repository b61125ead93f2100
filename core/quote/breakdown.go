package quote

import (
	"github.com/shopspring/decimal"
)

// RateCategory names the rate table a warning refers to.
type RateCategory string

const (
	CategoryPaper     RateCategory = "paper"
	CategoryToner     RateCategory = "toner"
	CategoryCover     RateCategory = "cover"
	CategoryPackaging RateCategory = "packaging"
	CategoryBHR       RateCategory = "bhr"
	CategoryService   RateCategory = "service"
	CategoryMargin    RateCategory = "margin"
)

// Warning records a rate key that had no catalog entry. The affected
// line is priced at zero; the warning is what distinguishes that zero
// from a genuine zero-cost rate.
type Warning struct {
	Category RateCategory
	Key      string
}

func (w Warning) String() string {
	return string(w.Category) + "/" + w.Key
}

// Breakdown is the priced, itemized quotation. It is a pure value
// object, fully derived from (catalog, request); recomputing with the
// same inputs reproduces it exactly.
type Breakdown struct {
	PaperCost     decimal.Decimal
	TonerCost     decimal.Decimal
	CoverCost     decimal.Decimal
	FinishingCost decimal.Decimal
	PackagingCost decimal.Decimal

	DesignCost decimal.Decimal
	ISBNCost   decimal.Decimal
	BHRCost    decimal.Decimal
	OthersCost decimal.Decimal

	// BookSpecsTotal is the sum of the five printing lines;
	// ServicesTotal the sum of the four add-on lines.
	BookSpecsTotal decimal.Decimal
	ServicesTotal  decimal.Decimal
	RawCost        decimal.Decimal

	MarginPercent decimal.Decimal
	MarginAmount  decimal.Decimal

	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal

	FinalTotal decimal.Decimal

	Warnings []Warning
}

// HasWarnings reports whether any rate lookup came back empty.
func (b *Breakdown) HasWarnings() bool {
	return len(b.Warnings) > 0
}
