// Package catalog provides the immutable rate-table snapshot used to
// price quotations. A Catalog is built once, validated, content-hashed
// and sealed; a reload replaces it wholesale, it is never patched.
package catalog

import (
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// BookSize identifies a trim size.
type BookSize string

const (
	SizeA6   BookSize = "A6"
	SizeA5   BookSize = "A5"
	Size6x9  BookSize = "6x9"
	Size7x10 BookSize = "7x10"
	SizeA4   BookSize = "A4"
	SizeA3   BookSize = "A3"
)

// PaperKey identifies a paper rate.
type PaperKey struct {
	PaperType string
	Size      BookSize
}

// String returns a deterministic string representation
func (k PaperKey) String() string {
	return k.PaperType + "/" + string(k.Size)
}

// TonerKey identifies a toner rate.
type TonerKey struct {
	ColorMode string
	Size      BookSize
}

// String returns a deterministic string representation
func (k TonerKey) String() string {
	return k.ColorMode + "/" + string(k.Size)
}

// CoverKey identifies a cover rate.
type CoverKey struct {
	CoverType string
	Size      BookSize
}

// String returns a deterministic string representation
func (k CoverKey) String() string {
	return k.CoverType + "/" + string(k.Size)
}

// PaperRate is the per-page cost of a paper stock at a trim size.
type PaperRate struct {
	Key         PaperKey
	CostPerPage decimal.Decimal
}

// TonerRate is the per-page cost of an interior color mode at a trim size.
type TonerRate struct {
	Key         TonerKey
	CostPerPage decimal.Decimal
}

// CoverRate is the flat per-copy cost of a cover type at a trim size.
type CoverRate struct {
	Key         CoverKey
	CostPerCopy decimal.Decimal
}

// PackagingRate is the flat per-copy packaging cost for a trim size.
type PackagingRate struct {
	Size        BookSize
	CostPerCopy decimal.Decimal
}

// FinishingBand maps a page-count range to a flat per-copy finishing
// cost. A nil MaxPages means the band is unbounded above.
type FinishingBand struct {
	MinPages    int
	MaxPages    *int
	CostPerCopy decimal.Decimal
}

// Contains reports whether pages falls within the band.
func (b FinishingBand) Contains(pages int) bool {
	if pages < b.MinPages {
		return false
	}
	return b.MaxPages == nil || pages <= *b.MaxPages
}

// AdditionalService is a flat-cost optional service (Design, ISBN).
type AdditionalService struct {
	Name    string
	Cost    decimal.Decimal
	Default bool
}

// ProfitMarginBand maps a copy-count range to candidate margin
// percentages. The engine applies Primary; Secondary is operator
// guidance only. A nil MaxCopies means unbounded above.
type ProfitMarginBand struct {
	MinCopies int
	MaxCopies *int
	Primary   decimal.Decimal
	Secondary *decimal.Decimal
}

// Contains reports whether copies falls within the band.
func (b ProfitMarginBand) Contains(copies int) bool {
	if copies < b.MinCopies {
		return false
	}
	return b.MaxCopies == nil || copies <= *b.MaxCopies
}

// BulkDiscountTier maps a copy-count threshold to a discount
// percentage. Resolution is highest-threshold-met wins.
type BulkDiscountTier struct {
	Threshold int
	Percent   decimal.Decimal
}

// ContentHash is the SHA-256 of all rate entries.
type ContentHash [32]byte

// Hex returns the hash as a hex string.
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Catalog is IMMUTABLE after Build. It holds every rate table needed
// to price one quote.
type Catalog struct {
	id          string
	contentHash ContentHash
	createdAt   time.Time

	paper     []PaperRate
	toner     []TonerRate
	cover     []CoverRate
	packaging []PackagingRate
	finishing []FinishingBand
	services  []AdditionalService
	margins   []ProfitMarginBand
	tiers     []BulkDiscountTier

	bhrRate    decimal.Decimal
	bhrPresent bool

	paperIndex     map[PaperKey]int
	tonerIndex     map[TonerKey]int
	coverIndex     map[CoverKey]int
	packagingIndex map[BookSize]int
	serviceIndex   map[string]int
}

// ID returns the snapshot identifier, derived from the content hash.
func (c *Catalog) ID() string { return c.id }

// Hash returns the content hash over all rate entries.
func (c *Catalog) Hash() ContentHash { return c.contentHash }

// CreatedAt returns when the snapshot was built.
func (c *Catalog) CreatedAt() time.Time { return c.createdAt }

// PaperCostPerPage looks up the per-page paper cost.
func (c *Catalog) PaperCostPerPage(key PaperKey) (decimal.Decimal, bool) {
	i, ok := c.paperIndex[key]
	if !ok {
		return decimal.Zero, false
	}
	return c.paper[i].CostPerPage, true
}

// TonerCostPerPage looks up the per-page toner cost.
func (c *Catalog) TonerCostPerPage(key TonerKey) (decimal.Decimal, bool) {
	i, ok := c.tonerIndex[key]
	if !ok {
		return decimal.Zero, false
	}
	return c.toner[i].CostPerPage, true
}

// CoverCostPerCopy looks up the flat per-copy cover cost.
func (c *Catalog) CoverCostPerCopy(key CoverKey) (decimal.Decimal, bool) {
	i, ok := c.coverIndex[key]
	if !ok {
		return decimal.Zero, false
	}
	return c.cover[i].CostPerCopy, true
}

// PackagingCostPerCopy looks up the flat per-copy packaging cost.
func (c *Catalog) PackagingCostPerCopy(size BookSize) (decimal.Decimal, bool) {
	i, ok := c.packagingIndex[size]
	if !ok {
		return decimal.Zero, false
	}
	return c.packaging[i].CostPerCopy, true
}

// ServiceCost looks up the flat cost of an additional service by name.
func (c *Catalog) ServiceCost(name string) (decimal.Decimal, bool) {
	i, ok := c.serviceIndex[name]
	if !ok {
		return decimal.Zero, false
	}
	return c.services[i].Cost, true
}

// BHRRatePerHour returns the configured billable hourly rate.
func (c *Catalog) BHRRatePerHour() (decimal.Decimal, bool) {
	return c.bhrRate, c.bhrPresent
}

// PaperRates returns all paper rates in sorted order.
func (c *Catalog) PaperRates() []PaperRate {
	out := make([]PaperRate, len(c.paper))
	copy(out, c.paper)
	return out
}

// TonerRates returns all toner rates in sorted order.
func (c *Catalog) TonerRates() []TonerRate {
	out := make([]TonerRate, len(c.toner))
	copy(out, c.toner)
	return out
}

// CoverRates returns all cover rates in sorted order.
func (c *Catalog) CoverRates() []CoverRate {
	out := make([]CoverRate, len(c.cover))
	copy(out, c.cover)
	return out
}

// PackagingRates returns all packaging rates in sorted order.
func (c *Catalog) PackagingRates() []PackagingRate {
	out := make([]PackagingRate, len(c.packaging))
	copy(out, c.packaging)
	return out
}

// FinishingBands returns all finishing bands ordered by MinPages.
func (c *Catalog) FinishingBands() []FinishingBand {
	out := make([]FinishingBand, len(c.finishing))
	copy(out, c.finishing)
	return out
}

// Services returns all additional services in sorted order.
func (c *Catalog) Services() []AdditionalService {
	out := make([]AdditionalService, len(c.services))
	copy(out, c.services)
	return out
}

// MarginBands returns all profit margin bands ordered by MinCopies.
func (c *Catalog) MarginBands() []ProfitMarginBand {
	out := make([]ProfitMarginBand, len(c.margins))
	copy(out, c.margins)
	return out
}

// DiscountTiers returns all bulk discount tiers ordered by threshold.
func (c *Catalog) DiscountTiers() []BulkDiscountTier {
	out := make([]BulkDiscountTier, len(c.tiers))
	copy(out, c.tiers)
	return out
}
