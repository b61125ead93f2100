package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"printquote/core/catalog"
	"printquote/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// bhrFactor is the press-sheets-per-hour divisor for a trim size: the
// number of book pages imposed on one press sheet.
var bhrFactor = map[catalog.BookSize]int64{
	catalog.SizeA6:   8,
	catalog.SizeA5:   4,
	catalog.Size6x9:  2,
	catalog.Size7x10: 2,
	catalog.SizeA4:   2,
	catalog.SizeA3:   1,
}

// sheetsPerHour is the press throughput the BHR cost is scaled by.
const sheetsPerHour = 48

// ComputeQuote prices a request against a catalog snapshot and returns
// the itemized breakdown.
//
// A malformed request returns a validation error and no breakdown. A
// missing rate does not abort: the affected line is priced at zero and
// a Warning is attached, so a flagged zero is always distinguishable
// from a genuine zero-cost rate.
func ComputeQuote(cat *catalog.Catalog, req Request) (*Breakdown, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rv := resolver{cat: cat}
	bd := &Breakdown{}
	warn := func(category RateCategory, key string) {
		bd.Warnings = append(bd.Warnings, Warning{Category: category, Key: key})
	}

	pages := decimal.NewFromInt(int64(req.PageCount))
	copies := decimal.NewFromInt(int64(req.Copies))

	// Unit rates, scaled to volume. Per-page rates multiply by pages
	// and copies; per-copy rates by copies only.
	paperRate, ok := rv.paperCostPerPage(req.PaperType, req.BookSize)
	if !ok {
		warn(CategoryPaper, req.PaperType+"/"+string(req.BookSize))
	}
	bd.PaperCost = paperRate.Mul(pages).Mul(copies)

	tonerRate, ok := rv.tonerCostPerPage(req.ColorMode, req.BookSize)
	if !ok {
		warn(CategoryToner, req.ColorMode+"/"+string(req.BookSize))
	}
	bd.TonerCost = tonerRate.Mul(pages).Mul(copies)

	coverRate, ok := rv.coverCostPerCopy(req.CoverType, req.BookSize)
	if !ok {
		warn(CategoryCover, req.CoverType+"/"+string(req.BookSize))
	}
	bd.CoverCost = coverRate.Mul(copies)

	packagingRate, ok := rv.packagingCostPerCopy(req.BookSize)
	if !ok {
		warn(CategoryPackaging, string(req.BookSize))
	}
	bd.PackagingCost = packagingRate.Mul(copies)

	// A page count matching no finishing band is charge-free: books
	// below the lowest band need no finishing. Not a warning.
	finishingRate, _ := rv.finishingCostPerCopy(req.PageCount)
	bd.FinishingCost = finishingRate.Mul(copies)

	bd.DesignCost = decimal.Zero
	if req.IncludeDesign {
		cost, ok := rv.serviceCost(catalog.ServiceDesign)
		if !ok {
			warn(CategoryService, catalog.ServiceDesign)
		}
		bd.DesignCost = cost
	}

	bd.ISBNCost = decimal.Zero
	if req.IncludeISBN {
		cost, ok := rv.serviceCost(catalog.ServiceISBN)
		if !ok {
			warn(CategoryService, catalog.ServiceISBN)
		}
		bd.ISBNCost = cost
	}

	bd.BHRCost = decimal.Zero
	if req.IncludeBHR {
		bd.BHRCost = computeBHR(rv, req, warn)
	}

	bd.OthersCost = decimal.Zero
	for _, item := range req.Others {
		bd.OthersCost = bd.OthersCost.Add(item.Cost)
	}

	bd.BookSpecsTotal = bd.PaperCost.
		Add(bd.TonerCost).
		Add(bd.CoverCost).
		Add(bd.FinishingCost).
		Add(bd.PackagingCost)
	bd.ServicesTotal = bd.DesignCost.
		Add(bd.ISBNCost).
		Add(bd.BHRCost).
		Add(bd.OthersCost)
	bd.RawCost = bd.BookSpecsTotal.Add(bd.ServicesTotal)

	// Margin: an explicit percentage wins; otherwise resolve the copy
	// band. No band and no explicit percentage is a flagged zero, never
	// a silent one.
	switch {
	case req.MarginPercent != nil:
		bd.MarginPercent = *req.MarginPercent
	default:
		band, ok := rv.marginBand(req.Copies)
		if !ok {
			warn(CategoryMargin, fmt.Sprintf("copies=%d", req.Copies))
			bd.MarginPercent = decimal.Zero
		} else {
			bd.MarginPercent = band.Primary
		}
	}
	bd.MarginAmount = bd.RawCost.Mul(bd.MarginPercent).Div(hundred)

	subtotal := bd.RawCost.Add(bd.MarginAmount)

	// Bulk discount: stair-step tier percentage applied to the
	// margin-inclusive subtotal.
	bd.DiscountPercent = decimal.Zero
	bd.DiscountAmount = decimal.Zero
	if req.ApplyBulkDiscount {
		bd.DiscountPercent = rv.discountPercent(req.Copies)
		bd.DiscountAmount = subtotal.Mul(bd.DiscountPercent).Div(hundred)
	}

	if bd.DiscountAmount.GreaterThan(subtotal) {
		return nil, errors.Discount(
			fmt.Sprintf("discount %s exceeds subtotal %s", bd.DiscountAmount, subtotal))
	}

	bd.FinalTotal = subtotal.Sub(bd.DiscountAmount)
	return bd, nil
}

// computeBHR derives the labor cost: press hours for the run times the
// configured hourly rate. Hours = pages*copies / (factor*sheetsPerHour)
// with a single trailing division to keep exact inputs exact.
func computeBHR(rv resolver, req Request, warn func(RateCategory, string)) decimal.Decimal {
	rate, ok := rv.bhrRatePerHour()
	if !ok {
		warn(CategoryBHR, "rate_per_hour")
		return decimal.Zero
	}
	factor, ok := bhrFactor[req.BookSize]
	if !ok {
		warn(CategoryBHR, "factor/"+string(req.BookSize))
		return decimal.Zero
	}

	pages := decimal.NewFromInt(int64(req.PageCount))
	copies := decimal.NewFromInt(int64(req.Copies))
	divisor := decimal.NewFromInt(factor * sheetsPerHour)
	return pages.Mul(copies).Mul(rate).Div(divisor)
}
