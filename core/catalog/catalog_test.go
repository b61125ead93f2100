// Package catalog - Snapshot invariant tests
// These tests prove the build-time invariants by violating them.
package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultsBuild(t *testing.T) {
	cat := Defaults()

	checks := []struct {
		table string
		got   int
		want  int
	}{
		{"paper", len(cat.PaperRates()), 18},
		{"toner", len(cat.TonerRates()), 8},
		{"cover", len(cat.CoverRates()), 8},
		{"finishing", len(cat.FinishingBands()), 3},
		{"packaging", len(cat.PackagingRates()), 4},
		{"services", len(cat.Services()), 2},
		{"margins", len(cat.MarginBands()), 4},
		{"tiers", len(cat.DiscountTiers()), 3},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %d entries, got %d", c.table, c.want, c.got)
		}
	}

	rate, ok := cat.BHRRatePerHour()
	if !ok {
		t.Fatal("expected BHR rate to be configured")
	}
	if !rate.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected BHR rate 3000, got %s", rate)
	}
	if cat.ID() == "" {
		t.Error("expected non-empty snapshot ID")
	}
}

func TestContentHashDeterministic(t *testing.T) {
	a := Defaults()
	b := Defaults()

	if a.Hash() != b.Hash() {
		t.Errorf("identical rate tables produced different hashes: %s vs %s",
			a.Hash().Hex(), b.Hash().Hex())
	}
	if a.ID() != b.ID() {
		t.Errorf("identical rate tables produced different IDs: %s vs %s", a.ID(), b.ID())
	}
}

func TestContentHashChangesWithRates(t *testing.T) {
	base, err := NewBuilder().
		AddPaperRate("Cream 80gsm", SizeA5, dec("3.5")).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	changed, err := NewBuilder().
		AddPaperRate("Cream 80gsm", SizeA5, dec("3.6")).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if base.Hash() == changed.Hash() {
		t.Error("different rates produced the same content hash")
	}
}

func TestHashIndependentOfInsertionOrder(t *testing.T) {
	a, err := NewBuilder().
		AddPaperRate("Cream 80gsm", SizeA5, dec("3.5")).
		AddPaperRate("White 80gsm", SizeA4, dec("5.625")).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBuilder().
		AddPaperRate("White 80gsm", SizeA4, dec("5.625")).
		AddPaperRate("Cream 80gsm", SizeA5, dec("3.5")).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if a.Hash() != b.Hash() {
		t.Error("insertion order changed the content hash")
	}
}

func TestOverlappingFinishingBandsRejected(t *testing.T) {
	_, err := NewBuilder().
		AddFinishingBand(50, intPtr(140), dec("70")).
		AddFinishingBand(100, intPtr(200), dec("120")).
		Build()
	if err == nil {
		t.Fatal("expected overlapping finishing bands to be rejected")
	}
}

func TestUnboundedFinishingBandMustBeLast(t *testing.T) {
	_, err := NewBuilder().
		AddFinishingBand(50, nil, dec("70")).
		AddFinishingBand(100, intPtr(200), dec("120")).
		Build()
	if err == nil {
		t.Fatal("expected a band after an unbounded band to be rejected")
	}
}

func TestInvertedFinishingBandRejected(t *testing.T) {
	_, err := NewBuilder().
		AddFinishingBand(200, intPtr(100), dec("70")).
		Build()
	if err == nil {
		t.Fatal("expected inverted band range to be rejected")
	}
}

func TestOverlappingMarginBandsRejected(t *testing.T) {
	_, err := NewBuilder().
		AddMarginBand(50, intPtr(500), dec("100"), nil).
		AddMarginBand(250, intPtr(1000), dec("80"), nil).
		Build()
	if err == nil {
		t.Fatal("expected overlapping margin bands to be rejected")
	}
}

func TestDuplicateDiscountThresholdRejected(t *testing.T) {
	_, err := NewBuilder().
		AddDiscountTier(500, dec("10")).
		AddDiscountTier(500, dec("15")).
		Build()
	if err == nil {
		t.Fatal("expected duplicate discount threshold to be rejected")
	}
}

func TestDiscountPercentBoundsEnforced(t *testing.T) {
	_, err := NewBuilder().
		AddDiscountTier(500, dec("110")).
		Build()
	if err == nil {
		t.Fatal("expected discount percentage above 100 to be rejected")
	}

	_, err = NewBuilder().
		AddDiscountTier(500, dec("-5")).
		Build()
	if err == nil {
		t.Fatal("expected negative discount percentage to be rejected")
	}
}

func TestNegativeRatesRejected(t *testing.T) {
	builders := map[string]*Builder{
		"paper":     NewBuilder().AddPaperRate("Cream 80gsm", SizeA5, dec("-1")),
		"toner":     NewBuilder().AddTonerRate("B/W", SizeA5, dec("-1")),
		"cover":     NewBuilder().AddCoverRate("Soft", SizeA5, dec("-1")),
		"packaging": NewBuilder().AddPackagingRate(SizeA5, dec("-1")),
		"finishing": NewBuilder().AddFinishingBand(50, nil, dec("-1")),
		"service":   NewBuilder().AddService("Design", dec("-1"), true),
		"bhr":       NewBuilder().SetBHRRate(dec("-1")),
	}
	for name, b := range builders {
		if _, err := b.Build(); err == nil {
			t.Errorf("%s: expected negative rate to be rejected", name)
		}
	}
}

func TestDuplicateKeysRejected(t *testing.T) {
	_, err := NewBuilder().
		AddPaperRate("Cream 80gsm", SizeA5, dec("3.5")).
		AddPaperRate("Cream 80gsm", SizeA5, dec("3.6")).
		Build()
	if err == nil {
		t.Fatal("expected duplicate paper key to be rejected")
	}
}

func TestLookups(t *testing.T) {
	cat := Defaults()

	rate, ok := cat.PaperCostPerPage(PaperKey{PaperType: "Gloss 135gsm", Size: SizeA4})
	if !ok {
		t.Fatal("expected Gloss 135gsm/A4 to be present")
	}
	if !rate.Equal(dec("16.25")) {
		t.Errorf("expected 16.25, got %s", rate)
	}

	if _, ok := cat.PaperCostPerPage(PaperKey{PaperType: "Gloss 135gsm", Size: SizeA6}); ok {
		t.Error("expected Gloss 135gsm/A6 to be absent")
	}
	if _, ok := cat.PackagingCostPerCopy(SizeA3); ok {
		t.Error("expected A3 packaging to be absent")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	cat := Defaults()
	bands := cat.FinishingBands()
	bands[0].CostPerCopy = dec("999999")

	fresh := cat.FinishingBands()
	if fresh[0].CostPerCopy.Equal(dec("999999")) {
		t.Error("mutating a returned slice leaked into the catalog")
	}
}
