package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printquote/core/catalog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	conn, err := Open(filepath.Join(t.TempDir(), "printquote.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, Migrate(conn))
	return NewStore(conn, zap.NewNop())
}

func TestSeedAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SeedIfEmpty(ctx))

	cat, err := store.LoadCatalog(ctx)
	require.NoError(t, err)

	// Seed data is exactly the stock defaults, so the content hash
	// of the loaded snapshot matches the in-memory one.
	defaults := catalog.Defaults()
	assert.Equal(t, defaults.Hash(), cat.Hash())
	assert.Equal(t, defaults.ID(), cat.ID())

	assert.Len(t, cat.PaperRates(), 18)
	assert.Len(t, cat.DiscountTiers(), 3)

	rate, ok := cat.BHRRatePerHour()
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromInt(3000)), "got %s", rate)
}

func TestSeedIfEmptyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SeedIfEmpty(ctx))

	// Overwrite one table, then seed again. A populated catalog must
	// not be touched.
	custom := []catalog.PaperRate{{
		Key:         catalog.PaperKey{PaperType: "Linen 90gsm", Size: catalog.SizeA5},
		CostPerPage: decimal.RequireFromString("4.25"),
	}}
	require.NoError(t, store.ReplacePaperRates(ctx, custom))
	require.NoError(t, store.SeedIfEmpty(ctx))

	cat, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, cat.PaperRates(), 1)
	assert.Equal(t, "Linen 90gsm", cat.PaperRates()[0].Key.PaperType)
}

func TestReplaceChangesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SeedIfEmpty(ctx))

	before, err := store.LoadCatalog(ctx)
	require.NoError(t, err)

	tiers := []catalog.BulkDiscountTier{
		{Threshold: 100, Percent: decimal.RequireFromString("2.5")},
		{Threshold: 500, Percent: decimal.RequireFromString("12")},
	}
	require.NoError(t, store.ReplaceDiscountTiers(ctx, tiers))

	after, err := store.LoadCatalog(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, before.Hash(), after.Hash())
	require.Len(t, after.DiscountTiers(), 2)
	assert.Equal(t, 100, after.DiscountTiers()[0].Threshold)
	assert.True(t, after.DiscountTiers()[0].Percent.Equal(decimal.RequireFromString("2.5")))
}

func TestReplacePreservesNullableColumns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SeedIfEmpty(ctx))

	cat, err := store.LoadCatalog(ctx)
	require.NoError(t, err)

	// The top finishing band is open-ended and the default margin
	// bands carry a secondary percentage. Both survive the round trip.
	bands := cat.FinishingBands()
	require.Len(t, bands, 3)
	assert.Nil(t, bands[2].MaxPages)

	margins := cat.MarginBands()
	require.Len(t, margins, 4)
	require.NotNil(t, margins[0].Secondary)
	assert.True(t, margins[0].Secondary.Equal(decimal.NewFromInt(90)))
}

func TestSetBHRRate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SeedIfEmpty(ctx))

	require.NoError(t, store.SetBHRRate(ctx, decimal.NewFromInt(3500)))

	cat, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	rate, ok := cat.BHRRatePerHour()
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromInt(3500)), "got %s", rate)
}

func TestResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SeedIfEmpty(ctx))

	require.NoError(t, store.ReplacePaperRates(ctx, nil))
	require.NoError(t, store.SetBHRRate(ctx, decimal.NewFromInt(9999)))

	require.NoError(t, store.Reset(ctx))

	cat, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Defaults().Hash(), cat.Hash())
}
