package catalog

import "github.com/shopspring/decimal"

// Service names the engine looks up by convention.
const (
	ServiceDesign = "Design"
	ServiceISBN   = "ISBN"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int { return &v }

// Defaults returns the stock rate catalog. These are the values the
// print shop operates with out of the box; the admin surface can
// replace any table wholesale.
func Defaults() *Catalog {
	b := NewBuilder()

	// Paper, cost per page
	b.AddPaperRate("Cream 100gsm", SizeA6, dec("1.84375"))
	b.AddPaperRate("Cream 100gsm", SizeA5, dec("3.6875"))
	b.AddPaperRate("Cream 100gsm", Size6x9, dec("7.375"))
	b.AddPaperRate("Cream 100gsm", Size7x10, dec("7.375"))
	b.AddPaperRate("Cream 100gsm", SizeA4, dec("7.375"))
	b.AddPaperRate("Cream 100gsm", SizeA3, dec("14.75"))
	b.AddPaperRate("Cream 80gsm", SizeA6, dec("1.75"))
	b.AddPaperRate("Cream 80gsm", SizeA5, dec("3.5"))
	b.AddPaperRate("Cream 80gsm", Size6x9, dec("7"))
	b.AddPaperRate("Cream 80gsm", Size7x10, dec("7"))
	b.AddPaperRate("Cream 80gsm", SizeA4, dec("7"))
	b.AddPaperRate("Cream 80gsm", SizeA3, dec("14"))
	b.AddPaperRate("White 80gsm", SizeA6, dec("1.40625"))
	b.AddPaperRate("White 80gsm", SizeA5, dec("2.8125"))
	b.AddPaperRate("White 80gsm", Size6x9, dec("5.625"))
	b.AddPaperRate("White 80gsm", SizeA4, dec("5.625"))
	b.AddPaperRate("Gloss 135gsm", SizeA5, dec("8.125"))
	b.AddPaperRate("Gloss 135gsm", SizeA4, dec("16.25"))

	// Toner, cost per page
	b.AddTonerRate("B/W", SizeA6, dec("0.5"))
	b.AddTonerRate("B/W", SizeA5, dec("1"))
	b.AddTonerRate("B/W", Size6x9, dec("2"))
	b.AddTonerRate("B/W", SizeA4, dec("2"))
	b.AddTonerRate("Colour", SizeA6, dec("2.5"))
	b.AddTonerRate("Colour", SizeA5, dec("5"))
	b.AddTonerRate("Colour", Size6x9, dec("10"))
	b.AddTonerRate("Colour", SizeA4, dec("10"))

	// Covers, flat per copy
	b.AddCoverRate("Soft", SizeA6, dec("100"))
	b.AddCoverRate("Soft", SizeA5, dec("165"))
	b.AddCoverRate("Soft", Size6x9, dec("310"))
	b.AddCoverRate("Soft", SizeA4, dec("350"))
	b.AddCoverRate("Hard Cover (Casebound)", SizeA6, dec("250"))
	b.AddCoverRate("Hard Cover (Casebound)", SizeA5, dec("500"))
	b.AddCoverRate("Hard Cover (Casebound)", Size6x9, dec("800"))
	b.AddCoverRate("Hard Cover (Casebound)", SizeA4, dec("1000"))

	// Finishing, flat per copy by page band
	b.AddFinishingBand(50, intPtr(140), dec("70"))
	b.AddFinishingBand(150, intPtr(320), dec("120"))
	b.AddFinishingBand(350, nil, dec("300"))

	// Packaging, flat per copy
	b.AddPackagingRate(SizeA6, dec("7"))
	b.AddPackagingRate(SizeA5, dec("14"))
	b.AddPackagingRate(Size6x9, dec("15"))
	b.AddPackagingRate(SizeA4, dec("25"))

	b.SetBHRRate(dec("3000"))

	b.AddService(ServiceDesign, dec("10000"), true)
	b.AddService(ServiceISBN, dec("8000"), true)

	// Profit margins by copy band; primary applies, secondary is
	// negotiation guidance shown to operators
	b.AddMarginBand(50, intPtr(100), dec("100"), decPtr("90"))
	b.AddMarginBand(250, intPtr(500), dec("80"), decPtr("60"))
	b.AddMarginBand(1000, intPtr(2000), dec("55"), decPtr("45"))
	b.AddMarginBand(5000, intPtr(10000), dec("40"), decPtr("30"))

	// Bulk discount stair-step
	b.AddDiscountTier(250, dec("5"))
	b.AddDiscountTier(500, dec("10"))
	b.AddDiscountTier(1000, dec("15"))

	cat, err := b.Build()
	if err != nil {
		panic("catalog: default catalog failed validation: " + err.Error())
	}
	return cat
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
