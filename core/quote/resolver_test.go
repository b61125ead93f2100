package quote

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printquote/core/catalog"
)

func TestDiscountPercentStairStep(t *testing.T) {
	rv := resolver{cat: catalog.Defaults()}

	cases := []struct {
		copies int
		want   string
	}{
		{0, "0"},
		{249, "0"},
		{250, "5"},
		{499, "5"},
		{500, "10"},
		{999, "10"},
		{1000, "15"},
		{50000, "15"},
	}
	for _, tc := range cases {
		got := rv.discountPercent(tc.copies)
		assertDec(t, tc.want, got, fmt.Sprintf("discount at %d copies", tc.copies))
	}
}

func TestFinishingBandContainment(t *testing.T) {
	rv := resolver{cat: catalog.Defaults()}

	// Bands: [50,140]→70, [150,320]→120, [350,∞)→300
	for _, tc := range []struct {
		name  string
		page  int
		want  string
		found bool
	}{
		{"below lowest band", 49, "0", false},
		{"lower bound", 50, "70", true},
		{"upper bound", 140, "70", true},
		{"in gap", 145, "0", false},
		{"second band", 200, "120", true},
		{"unbounded band", 5000, "300", true},
	} {
		cost, ok := rv.finishingCostPerCopy(tc.page)
		assert.Equal(t, tc.found, ok, tc.name)
		assertDec(t, tc.want, cost, tc.name)
	}
}

func TestFinishingBandsMatchAtMostOnce(t *testing.T) {
	bands := catalog.Defaults().FinishingBands()
	for pages := 0; pages <= 1000; pages++ {
		matches := 0
		for _, band := range bands {
			if band.Contains(pages) {
				matches++
			}
		}
		require.LessOrEqual(t, matches, 1, "pages=%d matched %d bands", pages, matches)
	}
}

func TestMarginBandContainment(t *testing.T) {
	rv := resolver{cat: catalog.Defaults()}

	band, ok := rv.marginBand(75)
	require.True(t, ok)
	assertDec(t, "100", band.Primary, "primary at 75 copies")
	require.NotNil(t, band.Secondary)
	assertDec(t, "90", *band.Secondary, "secondary at 75 copies")

	_, ok = rv.marginBand(150)
	assert.False(t, ok, "150 copies falls between bands")

	_, ok = rv.marginBand(20000)
	assert.False(t, ok, "20000 copies is above the top band")
}

func TestExactMatchLookups(t *testing.T) {
	rv := resolver{cat: catalog.Defaults()}

	rate, ok := rv.paperCostPerPage("Cream 80gsm", catalog.SizeA5)
	require.True(t, ok)
	assertDec(t, "3.5", rate, "paper rate")

	_, ok = rv.paperCostPerPage("Cream 80gsm", catalog.BookSize("B5"))
	assert.False(t, ok, "unknown size")

	_, ok = rv.tonerCostPerPage("Sepia", catalog.SizeA5)
	assert.False(t, ok, "unknown color mode")

	rate, ok = rv.coverCostPerCopy("Hard Cover (Casebound)", catalog.SizeA4)
	require.True(t, ok)
	assertDec(t, "1000", rate, "cover rate")

	rate, ok = rv.packagingCostPerCopy(catalog.Size6x9)
	require.True(t, ok)
	assertDec(t, "15", rate, "packaging rate")

	rate, ok = rv.bhrRatePerHour()
	require.True(t, ok)
	assertDec(t, "3000", rate, "bhr rate")

	rate, ok = rv.serviceCost(catalog.ServiceDesign)
	require.True(t, ok)
	assertDec(t, "10000", rate, "design service")

	_, ok = rv.serviceCost("Lamination")
	assert.False(t, ok, "unknown service")
}
