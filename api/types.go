package api

import (
	"github.com/shopspring/decimal"

	"printquote/core/catalog"
	"printquote/core/quote"
	"printquote/internal/errors"
)

// QuoteRequest is the wire form of a pricing request. Monetary fields
// travel as decimal strings.
type QuoteRequest struct {
	BookSize      string `json:"book_size"`
	PaperType     string `json:"paper_type"`
	InteriorColor string `json:"interior_color"`
	CoverType     string `json:"cover_type"`
	PageCount     int    `json:"page_count"`
	Copies        int    `json:"copies"`

	IncludeDesign     bool `json:"include_design"`
	IncludeISBN       bool `json:"include_isbn"`
	IncludeBHR        bool `json:"include_bhr"`
	ApplyBulkDiscount bool `json:"apply_bulk_discount"`

	MarginPercent *string `json:"margin_percent,omitempty"`

	Others []OtherItem `json:"others,omitempty"`
}

// OtherItem is a free-form line item on the wire.
type OtherItem struct {
	Description string `json:"description"`
	Cost        string `json:"cost"`
}

// ToDomain converts the wire request into an engine request.
func (r QuoteRequest) ToDomain() (quote.Request, error) {
	req := quote.Request{
		BookSize:          catalog.BookSize(r.BookSize),
		PaperType:         r.PaperType,
		ColorMode:         r.InteriorColor,
		CoverType:         r.CoverType,
		PageCount:         r.PageCount,
		Copies:            r.Copies,
		IncludeDesign:     r.IncludeDesign,
		IncludeISBN:       r.IncludeISBN,
		IncludeBHR:        r.IncludeBHR,
		ApplyBulkDiscount: r.ApplyBulkDiscount,
	}

	if r.MarginPercent != nil {
		pct, err := decimal.NewFromString(*r.MarginPercent)
		if err != nil {
			return quote.Request{}, errors.Validationf("margin_percent %q: not a decimal", *r.MarginPercent)
		}
		req.MarginPercent = &pct
	}

	for _, item := range r.Others {
		cost, err := decimal.NewFromString(item.Cost)
		if err != nil {
			return quote.Request{}, errors.Validationf("other item %q: cost %q is not a decimal", item.Description, item.Cost)
		}
		req.Others = append(req.Others, quote.OtherItem{Description: item.Description, Cost: cost})
	}
	return req, nil
}

// WarningDTO is a missing-rate warning on the wire.
type WarningDTO struct {
	Category string `json:"category"`
	Key      string `json:"key"`
}

// QuoteResponse is the wire form of a priced breakdown.
type QuoteResponse struct {
	QuotationID  string `json:"quotation_id"`
	SnapshotID   string `json:"snapshot_id"`
	SnapshotHash string `json:"snapshot_hash"`

	PaperCost     string `json:"paper_cost"`
	TonerCost     string `json:"toner_cost"`
	CoverCost     string `json:"cover_cost"`
	FinishingCost string `json:"finishing_cost"`
	PackagingCost string `json:"packaging_cost"`

	DesignCost string `json:"design_cost"`
	ISBNCost   string `json:"isbn_cost"`
	BHRCost    string `json:"bhr_cost"`
	OthersCost string `json:"others_cost"`

	BookSpecsTotal string `json:"book_specs_total"`
	ServicesTotal  string `json:"services_total"`
	RawCost        string `json:"raw_cost"`

	MarginPercent string `json:"margin_percent"`
	MarginAmount  string `json:"margin_amount"`

	DiscountPercent string `json:"discount_percent"`
	DiscountAmount  string `json:"discount_amount"`

	FinalTotal string `json:"final_total"`

	Warnings []WarningDTO `json:"warnings,omitempty"`
}

// NewQuoteResponse maps a breakdown onto the wire form.
func NewQuoteResponse(quotationID string, cat *catalog.Catalog, bd *quote.Breakdown) QuoteResponse {
	resp := QuoteResponse{
		QuotationID:  quotationID,
		SnapshotID:   cat.ID(),
		SnapshotHash: cat.Hash().Hex(),

		PaperCost:     bd.PaperCost.String(),
		TonerCost:     bd.TonerCost.String(),
		CoverCost:     bd.CoverCost.String(),
		FinishingCost: bd.FinishingCost.String(),
		PackagingCost: bd.PackagingCost.String(),

		DesignCost: bd.DesignCost.String(),
		ISBNCost:   bd.ISBNCost.String(),
		BHRCost:    bd.BHRCost.String(),
		OthersCost: bd.OthersCost.String(),

		BookSpecsTotal: bd.BookSpecsTotal.String(),
		ServicesTotal:  bd.ServicesTotal.String(),
		RawCost:        bd.RawCost.String(),

		MarginPercent: bd.MarginPercent.String(),
		MarginAmount:  bd.MarginAmount.String(),

		DiscountPercent: bd.DiscountPercent.String(),
		DiscountAmount:  bd.DiscountAmount.String(),

		FinalTotal: bd.FinalTotal.String(),
	}
	for _, w := range bd.Warnings {
		resp.Warnings = append(resp.Warnings, WarningDTO{Category: string(w.Category), Key: w.Key})
	}
	return resp
}

// Admin table rows, mirroring the storage schema.

// PaperRateRow is a paper_costs row on the wire.
type PaperRateRow struct {
	PaperType   string `json:"paper_type"`
	Size        string `json:"size"`
	CostPerPage string `json:"cost_per_page"`
}

// TonerRateRow is a toner_costs row on the wire.
type TonerRateRow struct {
	ColorType   string `json:"color_type"`
	Size        string `json:"size"`
	CostPerPage string `json:"cost_per_page"`
}

// CoverRateRow is a cover_costs row on the wire.
type CoverRateRow struct {
	CoverType string `json:"cover_type"`
	Size      string `json:"size"`
	Cost      string `json:"cost"`
}

// FinishingBandRow is a finishing_costs row on the wire.
type FinishingBandRow struct {
	PageRangeMin int    `json:"page_range_min"`
	PageRangeMax *int   `json:"page_range_max"`
	Cost         string `json:"cost"`
}

// PackagingRateRow is a packaging_costs row on the wire.
type PackagingRateRow struct {
	Size string `json:"size"`
	Cost string `json:"cost"`
}

// BHRSettingRow is the bhr_settings singleton on the wire.
type BHRSettingRow struct {
	RatePerHour string `json:"rate_per_hour"`
}

// ServiceRow is an additional_services row on the wire.
type ServiceRow struct {
	ServiceName string `json:"service_name"`
	Cost        string `json:"cost"`
	IsDefault   bool   `json:"is_default"`
}

// MarginBandRow is a profit_margins row on the wire.
type MarginBandRow struct {
	CopiesMin         int     `json:"copies_min"`
	CopiesMax         *int    `json:"copies_max"`
	MarginPercentage1 string  `json:"margin_percentage_1"`
	MarginPercentage2 *string `json:"margin_percentage_2"`
}

// DiscountTierRow is a bulk_discount_tiers row on the wire.
type DiscountTierRow struct {
	CopiesThreshold    int    `json:"copies_threshold"`
	DiscountPercentage string `json:"discount_percentage"`
}

// CatalogResponse is the full snapshot on the wire.
type CatalogResponse struct {
	SnapshotID   string `json:"snapshot_id"`
	SnapshotHash string `json:"snapshot_hash"`
	CreatedAt    string `json:"created_at"`

	PaperRates    []PaperRateRow     `json:"paper_rates"`
	TonerRates    []TonerRateRow     `json:"toner_rates"`
	CoverRates    []CoverRateRow     `json:"cover_rates"`
	FinishingCost []FinishingBandRow `json:"finishing_costs"`
	Packaging     []PackagingRateRow `json:"packaging_costs"`
	BHR           *BHRSettingRow     `json:"bhr,omitempty"`
	Services      []ServiceRow       `json:"additional_services"`
	MarginBands   []MarginBandRow    `json:"profit_margins"`
	DiscountTiers []DiscountTierRow  `json:"bulk_discount_tiers"`
}

// NewCatalogResponse maps a snapshot onto the wire form.
func NewCatalogResponse(cat *catalog.Catalog) CatalogResponse {
	resp := CatalogResponse{
		SnapshotID:   cat.ID(),
		SnapshotHash: cat.Hash().Hex(),
		CreatedAt:    cat.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, r := range cat.PaperRates() {
		resp.PaperRates = append(resp.PaperRates, PaperRateRow{
			PaperType: r.Key.PaperType, Size: string(r.Key.Size), CostPerPage: r.CostPerPage.String(),
		})
	}
	for _, r := range cat.TonerRates() {
		resp.TonerRates = append(resp.TonerRates, TonerRateRow{
			ColorType: r.Key.ColorMode, Size: string(r.Key.Size), CostPerPage: r.CostPerPage.String(),
		})
	}
	for _, r := range cat.CoverRates() {
		resp.CoverRates = append(resp.CoverRates, CoverRateRow{
			CoverType: r.Key.CoverType, Size: string(r.Key.Size), Cost: r.CostPerCopy.String(),
		})
	}
	for _, band := range cat.FinishingBands() {
		resp.FinishingCost = append(resp.FinishingCost, FinishingBandRow{
			PageRangeMin: band.MinPages, PageRangeMax: band.MaxPages, Cost: band.CostPerCopy.String(),
		})
	}
	for _, r := range cat.PackagingRates() {
		resp.Packaging = append(resp.Packaging, PackagingRateRow{
			Size: string(r.Size), Cost: r.CostPerCopy.String(),
		})
	}
	if rate, ok := cat.BHRRatePerHour(); ok {
		resp.BHR = &BHRSettingRow{RatePerHour: rate.String()}
	}
	for _, svc := range cat.Services() {
		resp.Services = append(resp.Services, ServiceRow{
			ServiceName: svc.Name, Cost: svc.Cost.String(), IsDefault: svc.Default,
		})
	}
	for _, band := range cat.MarginBands() {
		row := MarginBandRow{
			CopiesMin: band.MinCopies, CopiesMax: band.MaxCopies,
			MarginPercentage1: band.Primary.String(),
		}
		if band.Secondary != nil {
			s := band.Secondary.String()
			row.MarginPercentage2 = &s
		}
		resp.MarginBands = append(resp.MarginBands, row)
	}
	for _, tier := range cat.DiscountTiers() {
		resp.DiscountTiers = append(resp.DiscountTiers, DiscountTierRow{
			CopiesThreshold: tier.Threshold, DiscountPercentage: tier.Percent.String(),
		})
	}
	return resp
}

// ErrorResponse is the typed error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error type and message.
type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
