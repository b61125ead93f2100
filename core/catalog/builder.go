package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"printquote/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Builder accumulates rate entries and produces a sealed Catalog.
type Builder struct {
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
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddPaperRate adds a per-page paper rate.
func (b *Builder) AddPaperRate(paperType string, size BookSize, costPerPage decimal.Decimal) *Builder {
	b.paper = append(b.paper, PaperRate{Key: PaperKey{PaperType: paperType, Size: size}, CostPerPage: costPerPage})
	return b
}

// AddTonerRate adds a per-page toner rate.
func (b *Builder) AddTonerRate(colorMode string, size BookSize, costPerPage decimal.Decimal) *Builder {
	b.toner = append(b.toner, TonerRate{Key: TonerKey{ColorMode: colorMode, Size: size}, CostPerPage: costPerPage})
	return b
}

// AddCoverRate adds a flat per-copy cover rate.
func (b *Builder) AddCoverRate(coverType string, size BookSize, costPerCopy decimal.Decimal) *Builder {
	b.cover = append(b.cover, CoverRate{Key: CoverKey{CoverType: coverType, Size: size}, CostPerCopy: costPerCopy})
	return b
}

// AddPackagingRate adds a flat per-copy packaging rate.
func (b *Builder) AddPackagingRate(size BookSize, costPerCopy decimal.Decimal) *Builder {
	b.packaging = append(b.packaging, PackagingRate{Size: size, CostPerCopy: costPerCopy})
	return b
}

// AddFinishingBand adds a page-count band. maxPages nil = unbounded.
func (b *Builder) AddFinishingBand(minPages int, maxPages *int, costPerCopy decimal.Decimal) *Builder {
	b.finishing = append(b.finishing, FinishingBand{MinPages: minPages, MaxPages: maxPages, CostPerCopy: costPerCopy})
	return b
}

// SetBHRRate sets the billable hourly rate.
func (b *Builder) SetBHRRate(ratePerHour decimal.Decimal) *Builder {
	b.bhrRate = ratePerHour
	b.bhrPresent = true
	return b
}

// AddService adds a flat-cost additional service.
func (b *Builder) AddService(name string, cost decimal.Decimal, isDefault bool) *Builder {
	b.services = append(b.services, AdditionalService{Name: name, Cost: cost, Default: isDefault})
	return b
}

// AddMarginBand adds a copy-count margin band. maxCopies nil = unbounded.
func (b *Builder) AddMarginBand(minCopies int, maxCopies *int, primary decimal.Decimal, secondary *decimal.Decimal) *Builder {
	b.margins = append(b.margins, ProfitMarginBand{MinCopies: minCopies, MaxCopies: maxCopies, Primary: primary, Secondary: secondary})
	return b
}

// AddDiscountTier adds a bulk discount tier.
func (b *Builder) AddDiscountTier(threshold int, percent decimal.Decimal) *Builder {
	b.tiers = append(b.tiers, BulkDiscountTier{Threshold: threshold, Percent: percent})
	return b
}

// Build validates the accumulated entries and returns a sealed Catalog.
func (b *Builder) Build() (*Catalog, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	c := &Catalog{
		createdAt:  time.Now().UTC(),
		paper:      append([]PaperRate(nil), b.paper...),
		toner:      append([]TonerRate(nil), b.toner...),
		cover:      append([]CoverRate(nil), b.cover...),
		packaging:  append([]PackagingRate(nil), b.packaging...),
		finishing:  append([]FinishingBand(nil), b.finishing...),
		services:   append([]AdditionalService(nil), b.services...),
		margins:    append([]ProfitMarginBand(nil), b.margins...),
		tiers:      append([]BulkDiscountTier(nil), b.tiers...),
		bhrRate:    b.bhrRate,
		bhrPresent: b.bhrPresent,
	}

	// Sort everything for deterministic ordering and hashing
	sort.Slice(c.paper, func(i, j int) bool { return c.paper[i].Key.String() < c.paper[j].Key.String() })
	sort.Slice(c.toner, func(i, j int) bool { return c.toner[i].Key.String() < c.toner[j].Key.String() })
	sort.Slice(c.cover, func(i, j int) bool { return c.cover[i].Key.String() < c.cover[j].Key.String() })
	sort.Slice(c.packaging, func(i, j int) bool { return c.packaging[i].Size < c.packaging[j].Size })
	sort.Slice(c.finishing, func(i, j int) bool { return c.finishing[i].MinPages < c.finishing[j].MinPages })
	sort.Slice(c.services, func(i, j int) bool { return c.services[i].Name < c.services[j].Name })
	sort.Slice(c.margins, func(i, j int) bool { return c.margins[i].MinCopies < c.margins[j].MinCopies })
	sort.Slice(c.tiers, func(i, j int) bool { return c.tiers[i].Threshold < c.tiers[j].Threshold })

	c.paperIndex = make(map[PaperKey]int, len(c.paper))
	for i, r := range c.paper {
		c.paperIndex[r.Key] = i
	}
	c.tonerIndex = make(map[TonerKey]int, len(c.toner))
	for i, r := range c.toner {
		c.tonerIndex[r.Key] = i
	}
	c.coverIndex = make(map[CoverKey]int, len(c.cover))
	for i, r := range c.cover {
		c.coverIndex[r.Key] = i
	}
	c.packagingIndex = make(map[BookSize]int, len(c.packaging))
	for i, r := range c.packaging {
		c.packagingIndex[r.Size] = i
	}
	c.serviceIndex = make(map[string]int, len(c.services))
	for i, s := range c.services {
		c.serviceIndex[s.Name] = i
	}

	c.contentHash = c.computeHash()
	c.id = hex.EncodeToString(c.contentHash[:8])
	return c, nil
}

func (b *Builder) validate() error {
	seenPaper := make(map[PaperKey]bool)
	for _, r := range b.paper {
		if r.CostPerPage.IsNegative() {
			return errors.Catalogf("paper rate %s: negative cost per page", r.Key)
		}
		if seenPaper[r.Key] {
			return errors.Catalogf("paper rate %s: duplicate key", r.Key)
		}
		seenPaper[r.Key] = true
	}

	seenToner := make(map[TonerKey]bool)
	for _, r := range b.toner {
		if r.CostPerPage.IsNegative() {
			return errors.Catalogf("toner rate %s: negative cost per page", r.Key)
		}
		if seenToner[r.Key] {
			return errors.Catalogf("toner rate %s: duplicate key", r.Key)
		}
		seenToner[r.Key] = true
	}

	seenCover := make(map[CoverKey]bool)
	for _, r := range b.cover {
		if r.CostPerCopy.IsNegative() {
			return errors.Catalogf("cover rate %s: negative cost", r.Key)
		}
		if seenCover[r.Key] {
			return errors.Catalogf("cover rate %s: duplicate key", r.Key)
		}
		seenCover[r.Key] = true
	}

	seenPackaging := make(map[BookSize]bool)
	for _, r := range b.packaging {
		if r.CostPerCopy.IsNegative() {
			return errors.Catalogf("packaging rate %s: negative cost", r.Size)
		}
		if seenPackaging[r.Size] {
			return errors.Catalogf("packaging rate %s: duplicate size", r.Size)
		}
		seenPackaging[r.Size] = true
	}

	if b.bhrPresent && b.bhrRate.IsNegative() {
		return errors.Catalog("BHR rate: negative rate per hour")
	}

	seenService := make(map[string]bool)
	for _, s := range b.services {
		if s.Name == "" {
			return errors.Catalog("additional service: empty name")
		}
		if s.Cost.IsNegative() {
			return errors.Catalogf("additional service %s: negative cost", s.Name)
		}
		if seenService[s.Name] {
			return errors.Catalogf("additional service %s: duplicate name", s.Name)
		}
		seenService[s.Name] = true
	}

	if err := validateFinishingBands(b.finishing); err != nil {
		return err
	}
	if err := validateMarginBands(b.margins); err != nil {
		return err
	}
	return validateDiscountTiers(b.tiers)
}

func validateFinishingBands(bands []FinishingBand) error {
	sorted := append([]FinishingBand(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPages < sorted[j].MinPages })
	for i, band := range sorted {
		if band.MinPages < 0 {
			return errors.Catalogf("finishing band %s: negative lower bound", bandRange(band.MinPages, band.MaxPages))
		}
		if band.MaxPages != nil && *band.MaxPages < band.MinPages {
			return errors.Catalogf("finishing band %s: inverted range", bandRange(band.MinPages, band.MaxPages))
		}
		if band.CostPerCopy.IsNegative() {
			return errors.Catalogf("finishing band %s: negative cost", bandRange(band.MinPages, band.MaxPages))
		}
		if i > 0 {
			prev := sorted[i-1]
			if prev.MaxPages == nil || band.MinPages <= *prev.MaxPages {
				return errors.Catalogf("finishing bands %s and %s overlap",
					bandRange(prev.MinPages, prev.MaxPages), bandRange(band.MinPages, band.MaxPages))
			}
		}
	}
	return nil
}

func validateMarginBands(bands []ProfitMarginBand) error {
	sorted := append([]ProfitMarginBand(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinCopies < sorted[j].MinCopies })
	for i, band := range sorted {
		if band.MinCopies < 0 {
			return errors.Catalogf("margin band %s: negative lower bound", bandRange(band.MinCopies, band.MaxCopies))
		}
		if band.MaxCopies != nil && *band.MaxCopies < band.MinCopies {
			return errors.Catalogf("margin band %s: inverted range", bandRange(band.MinCopies, band.MaxCopies))
		}
		if band.Primary.IsNegative() || (band.Secondary != nil && band.Secondary.IsNegative()) {
			return errors.Catalogf("margin band %s: negative percentage", bandRange(band.MinCopies, band.MaxCopies))
		}
		if i > 0 {
			prev := sorted[i-1]
			if prev.MaxCopies == nil || band.MinCopies <= *prev.MaxCopies {
				return errors.Catalogf("margin bands %s and %s overlap",
					bandRange(prev.MinCopies, prev.MaxCopies), bandRange(band.MinCopies, band.MaxCopies))
			}
		}
	}
	return nil
}

func validateDiscountTiers(tiers []BulkDiscountTier) error {
	sorted := append([]BulkDiscountTier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	for i, tier := range sorted {
		if tier.Threshold < 0 {
			return errors.Catalogf("discount tier %d: negative threshold", tier.Threshold)
		}
		if tier.Percent.IsNegative() || tier.Percent.GreaterThan(hundred) {
			return errors.Catalogf("discount tier %d: percentage outside [0,100]", tier.Threshold)
		}
		if i > 0 && tier.Threshold == sorted[i-1].Threshold {
			return errors.Catalogf("discount tier %d: duplicate threshold", tier.Threshold)
		}
	}
	return nil
}

func bandRange(min int, max *int) string {
	if max == nil {
		return fmt.Sprintf("[%d,∞)", min)
	}
	return fmt.Sprintf("[%d,%d]", min, *max)
}

// computeHash creates a content hash over all rate entries. The hash
// covers rates only, so two catalogs built from the same tables are
// identical regardless of when they were built.
func (c *Catalog) computeHash() ContentHash {
	h := sha256.New()
	for _, r := range c.paper {
		io.WriteString(h, "paper|"+r.Key.String()+"|"+r.CostPerPage.String()+"\n")
	}
	for _, r := range c.toner {
		io.WriteString(h, "toner|"+r.Key.String()+"|"+r.CostPerPage.String()+"\n")
	}
	for _, r := range c.cover {
		io.WriteString(h, "cover|"+r.Key.String()+"|"+r.CostPerCopy.String()+"\n")
	}
	for _, r := range c.packaging {
		io.WriteString(h, "packaging|"+string(r.Size)+"|"+r.CostPerCopy.String()+"\n")
	}
	for _, band := range c.finishing {
		io.WriteString(h, "finishing|"+bandRange(band.MinPages, band.MaxPages)+"|"+band.CostPerCopy.String()+"\n")
	}
	if c.bhrPresent {
		io.WriteString(h, "bhr|"+c.bhrRate.String()+"\n")
	}
	for _, s := range c.services {
		io.WriteString(h, "service|"+s.Name+"|"+s.Cost.String()+"\n")
	}
	for _, band := range c.margins {
		io.WriteString(h, "margin|"+bandRange(band.MinCopies, band.MaxCopies)+"|"+band.Primary.String())
		if band.Secondary != nil {
			io.WriteString(h, "|"+band.Secondary.String())
		}
		io.WriteString(h, "\n")
	}
	for _, tier := range c.tiers {
		io.WriteString(h, fmt.Sprintf("tier|%d|%s\n", tier.Threshold, tier.Percent.String()))
	}

	var hash ContentHash
	copy(hash[:], h.Sum(nil))
	return hash
}
