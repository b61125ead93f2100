package quote

import (
	"github.com/shopspring/decimal"

	"printquote/core/catalog"
)

// resolver wraps a catalog with the lookup policies the engine needs:
// exact match for unit rates, containment for bands, and
// highest-threshold-met for discount tiers. It never guesses; a miss
// is reported as such and the engine decides the fallback.
type resolver struct {
	cat *catalog.Catalog
}

func (rv resolver) paperCostPerPage(paperType string, size catalog.BookSize) (decimal.Decimal, bool) {
	return rv.cat.PaperCostPerPage(catalog.PaperKey{PaperType: paperType, Size: size})
}

func (rv resolver) tonerCostPerPage(colorMode string, size catalog.BookSize) (decimal.Decimal, bool) {
	return rv.cat.TonerCostPerPage(catalog.TonerKey{ColorMode: colorMode, Size: size})
}

func (rv resolver) coverCostPerCopy(coverType string, size catalog.BookSize) (decimal.Decimal, bool) {
	return rv.cat.CoverCostPerCopy(catalog.CoverKey{CoverType: coverType, Size: size})
}

func (rv resolver) packagingCostPerCopy(size catalog.BookSize) (decimal.Decimal, bool) {
	return rv.cat.PackagingCostPerCopy(size)
}

func (rv resolver) serviceCost(name string) (decimal.Decimal, bool) {
	return rv.cat.ServiceCost(name)
}

func (rv resolver) bhrRatePerHour() (decimal.Decimal, bool) {
	return rv.cat.BHRRatePerHour()
}

// finishingCostPerCopy finds the band containing pages. Bands are
// validated non-overlapping at build time, so at most one matches.
func (rv resolver) finishingCostPerCopy(pages int) (decimal.Decimal, bool) {
	for _, band := range rv.cat.FinishingBands() {
		if band.Contains(pages) {
			return band.CostPerCopy, true
		}
	}
	return decimal.Zero, false
}

// marginBand finds the band containing copies.
func (rv resolver) marginBand(copies int) (catalog.ProfitMarginBand, bool) {
	for _, band := range rv.cat.MarginBands() {
		if band.Contains(copies) {
			return band, true
		}
	}
	return catalog.ProfitMarginBand{}, false
}

// discountPercent resolves the stair-step bulk discount: the highest
// threshold met wins, no threshold met means zero.
func (rv resolver) discountPercent(copies int) decimal.Decimal {
	tiers := rv.cat.DiscountTiers()
	for i := len(tiers) - 1; i >= 0; i-- {
		if copies >= tiers[i].Threshold {
			return tiers[i].Percent
		}
	}
	return decimal.Zero
}
