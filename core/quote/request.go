// Package quote implements the quotation pricing engine. ComputeQuote
// is a pure function over an immutable catalog snapshot and a request;
// it performs no I/O and may be called concurrently.
package quote

import (
	"github.com/shopspring/decimal"

	"printquote/core/catalog"
	"printquote/internal/errors"
)

// OtherItem is a free-form extra line item on a request.
type OtherItem struct {
	Description string
	Cost        decimal.Decimal
}

// Request is the full specification of a printing job to price. It is
// constructed fresh per pricing call and never persisted.
type Request struct {
	BookSize  catalog.BookSize
	PaperType string
	ColorMode string
	CoverType string
	PageCount int
	Copies    int

	IncludeDesign     bool
	IncludeISBN       bool
	IncludeBHR        bool
	ApplyBulkDiscount bool

	// MarginPercent overrides the catalog margin bands when set.
	MarginPercent *decimal.Decimal

	Others []OtherItem
}

// Validate checks the request for fatal problems. A validation error
// means no quote is produced at all.
func (r Request) Validate() error {
	if r.BookSize == "" {
		return errors.Validation("book size is required")
	}
	if r.PaperType == "" {
		return errors.Validation("paper type is required")
	}
	if r.ColorMode == "" {
		return errors.Validation("interior color mode is required")
	}
	if r.CoverType == "" {
		return errors.Validation("cover type is required")
	}
	if r.PageCount < 0 {
		return errors.Validationf("page count must not be negative, got %d", r.PageCount)
	}
	if r.Copies < 0 {
		return errors.Validationf("copies must not be negative, got %d", r.Copies)
	}
	if r.MarginPercent != nil && r.MarginPercent.IsNegative() {
		return errors.Validation("margin percentage must not be negative")
	}
	for _, item := range r.Others {
		if item.Cost.IsNegative() {
			return errors.Validationf("other line item %q: cost must not be negative", item.Description)
		}
	}
	return nil
}
