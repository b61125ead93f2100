package db

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"printquote/core/catalog"
	"printquote/internal/errors"
)

// Store reads and replaces rate tables. LoadCatalog produces the
// sealed snapshot the engine consumes; every mutation is a wholesale
// table replacement followed by a fresh load on the caller's side.
type Store struct {
	conn *sql.DB
	log  *zap.Logger
}

// NewStore creates a store over an open database.
func NewStore(conn *sql.DB, log *zap.Logger) *Store {
	return &Store{conn: conn, log: log}
}

// LoadCatalog reads every rate table in one pass and builds a sealed
// catalog snapshot.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	b := catalog.NewBuilder()

	if err := s.loadPaper(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadToner(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadCover(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadFinishing(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadPackaging(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadBHR(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadServices(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadMargins(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadDiscountTiers(ctx, b); err != nil {
		return nil, err
	}

	cat, err := b.Build()
	if err != nil {
		return nil, err
	}
	s.log.Debug("catalog loaded", zap.String("snapshot_id", cat.ID()))
	return cat, nil
}

func (s *Store) loadPaper(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT paper_type, size, cost_per_page FROM paper_costs ORDER BY paper_type, size`)
	if err != nil {
		return errors.Storage("query paper_costs", err)
	}
	defer rows.Close()
	for rows.Next() {
		var paperType, size, cost string
		if err := rows.Scan(&paperType, &size, &cost); err != nil {
			return errors.Storage("scan paper_costs", err)
		}
		rate, err := decimal.NewFromString(cost)
		if err != nil {
			return errors.Storage("parse paper cost_per_page", err)
		}
		b.AddPaperRate(paperType, catalog.BookSize(size), rate)
	}
	return rows.Err()
}

func (s *Store) loadToner(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT color_type, size, cost_per_page FROM toner_costs ORDER BY color_type, size`)
	if err != nil {
		return errors.Storage("query toner_costs", err)
	}
	defer rows.Close()
	for rows.Next() {
		var colorMode, size, cost string
		if err := rows.Scan(&colorMode, &size, &cost); err != nil {
			return errors.Storage("scan toner_costs", err)
		}
		rate, err := decimal.NewFromString(cost)
		if err != nil {
			return errors.Storage("parse toner cost_per_page", err)
		}
		b.AddTonerRate(colorMode, catalog.BookSize(size), rate)
	}
	return rows.Err()
}

func (s *Store) loadCover(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT cover_type, size, cost FROM cover_costs ORDER BY cover_type, size`)
	if err != nil {
		return errors.Storage("query cover_costs", err)
	}
	defer rows.Close()
	for rows.Next() {
		var coverType, size, cost string
		if err := rows.Scan(&coverType, &size, &cost); err != nil {
			return errors.Storage("scan cover_costs", err)
		}
		rate, err := decimal.NewFromString(cost)
		if err != nil {
			return errors.Storage("parse cover cost", err)
		}
		b.AddCoverRate(coverType, catalog.BookSize(size), rate)
	}
	return rows.Err()
}

func (s *Store) loadFinishing(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT page_range_min, page_range_max, cost FROM finishing_costs ORDER BY page_range_min`)
	if err != nil {
		return errors.Storage("query finishing_costs", err)
	}
	defer rows.Close()
	for rows.Next() {
		var min int
		var max sql.NullInt64
		var cost string
		if err := rows.Scan(&min, &max, &cost); err != nil {
			return errors.Storage("scan finishing_costs", err)
		}
		rate, err := decimal.NewFromString(cost)
		if err != nil {
			return errors.Storage("parse finishing cost", err)
		}
		b.AddFinishingBand(min, nullableInt(max), rate)
	}
	return rows.Err()
}

func (s *Store) loadPackaging(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT size, cost FROM packaging_costs ORDER BY size`)
	if err != nil {
		return errors.Storage("query packaging_costs", err)
	}
	defer rows.Close()
	for rows.Next() {
		var size, cost string
		if err := rows.Scan(&size, &cost); err != nil {
			return errors.Storage("scan packaging_costs", err)
		}
		rate, err := decimal.NewFromString(cost)
		if err != nil {
			return errors.Storage("parse packaging cost", err)
		}
		b.AddPackagingRate(catalog.BookSize(size), rate)
	}
	return rows.Err()
}

func (s *Store) loadBHR(ctx context.Context, b *catalog.Builder) error {
	var rate string
	err := s.conn.QueryRowContext(ctx,
		`SELECT rate_per_hour FROM bhr_settings WHERE id = 1`).Scan(&rate)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Storage("query bhr_settings", err)
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return errors.Storage("parse bhr rate_per_hour", err)
	}
	b.SetBHRRate(d)
	return nil
}

func (s *Store) loadServices(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT service_name, cost, is_default FROM additional_services ORDER BY service_name`)
	if err != nil {
		return errors.Storage("query additional_services", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, cost string
		var isDefault bool
		if err := rows.Scan(&name, &cost, &isDefault); err != nil {
			return errors.Storage("scan additional_services", err)
		}
		d, err := decimal.NewFromString(cost)
		if err != nil {
			return errors.Storage("parse service cost", err)
		}
		b.AddService(name, d, isDefault)
	}
	return rows.Err()
}

func (s *Store) loadMargins(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT copies_min, copies_max, margin_percentage_1, margin_percentage_2 FROM profit_margins ORDER BY copies_min`)
	if err != nil {
		return errors.Storage("query profit_margins", err)
	}
	defer rows.Close()
	for rows.Next() {
		var min int
		var max sql.NullInt64
		var primary string
		var secondary sql.NullString
		if err := rows.Scan(&min, &max, &primary, &secondary); err != nil {
			return errors.Storage("scan profit_margins", err)
		}
		p, err := decimal.NewFromString(primary)
		if err != nil {
			return errors.Storage("parse margin_percentage_1", err)
		}
		var sec *decimal.Decimal
		if secondary.Valid {
			d, err := decimal.NewFromString(secondary.String)
			if err != nil {
				return errors.Storage("parse margin_percentage_2", err)
			}
			sec = &d
		}
		b.AddMarginBand(min, nullableInt(max), p, sec)
	}
	return rows.Err()
}

func (s *Store) loadDiscountTiers(ctx context.Context, b *catalog.Builder) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT copies_threshold, discount_percentage FROM bulk_discount_tiers ORDER BY copies_threshold`)
	if err != nil {
		return errors.Storage("query bulk_discount_tiers", err)
	}
	defer rows.Close()
	for rows.Next() {
		var threshold int
		var pct string
		if err := rows.Scan(&threshold, &pct); err != nil {
			return errors.Storage("scan bulk_discount_tiers", err)
		}
		d, err := decimal.NewFromString(pct)
		if err != nil {
			return errors.Storage("parse discount_percentage", err)
		}
		b.AddDiscountTier(threshold, d)
	}
	return rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// ReplacePaperRates replaces the paper_costs table wholesale.
func (s *Store) ReplacePaperRates(ctx context.Context, rates []catalog.PaperRate) error {
	return s.replace(ctx, "paper_costs", func(tx *sql.Tx) error {
		for _, r := range rates {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO paper_costs (paper_type, size, cost_per_page) VALUES (?, ?, ?)`,
				r.Key.PaperType, string(r.Key.Size), r.CostPerPage.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceTonerRates replaces the toner_costs table wholesale.
func (s *Store) ReplaceTonerRates(ctx context.Context, rates []catalog.TonerRate) error {
	return s.replace(ctx, "toner_costs", func(tx *sql.Tx) error {
		for _, r := range rates {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO toner_costs (color_type, size, cost_per_page) VALUES (?, ?, ?)`,
				r.Key.ColorMode, string(r.Key.Size), r.CostPerPage.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceCoverRates replaces the cover_costs table wholesale.
func (s *Store) ReplaceCoverRates(ctx context.Context, rates []catalog.CoverRate) error {
	return s.replace(ctx, "cover_costs", func(tx *sql.Tx) error {
		for _, r := range rates {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cover_costs (cover_type, size, cost) VALUES (?, ?, ?)`,
				r.Key.CoverType, string(r.Key.Size), r.CostPerCopy.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceFinishingBands replaces the finishing_costs table wholesale.
func (s *Store) ReplaceFinishingBands(ctx context.Context, bands []catalog.FinishingBand) error {
	return s.replace(ctx, "finishing_costs", func(tx *sql.Tx) error {
		for _, band := range bands {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO finishing_costs (page_range_min, page_range_max, cost) VALUES (?, ?, ?)`,
				band.MinPages, intValue(band.MaxPages), band.CostPerCopy.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplacePackagingRates replaces the packaging_costs table wholesale.
func (s *Store) ReplacePackagingRates(ctx context.Context, rates []catalog.PackagingRate) error {
	return s.replace(ctx, "packaging_costs", func(tx *sql.Tx) error {
		for _, r := range rates {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO packaging_costs (size, cost) VALUES (?, ?)`,
				string(r.Size), r.CostPerCopy.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetBHRRate replaces the singleton BHR setting.
func (s *Store) SetBHRRate(ctx context.Context, ratePerHour decimal.Decimal) error {
	return s.replace(ctx, "bhr_settings", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bhr_settings (id, rate_per_hour) VALUES (1, ?)`,
			ratePerHour.String())
		return err
	})
}

// ReplaceServices replaces the additional_services table wholesale.
func (s *Store) ReplaceServices(ctx context.Context, services []catalog.AdditionalService) error {
	return s.replace(ctx, "additional_services", func(tx *sql.Tx) error {
		for _, svc := range services {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO additional_services (service_name, cost, is_default) VALUES (?, ?, ?)`,
				svc.Name, svc.Cost.String(), svc.Default); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceMarginBands replaces the profit_margins table wholesale.
func (s *Store) ReplaceMarginBands(ctx context.Context, bands []catalog.ProfitMarginBand) error {
	return s.replace(ctx, "profit_margins", func(tx *sql.Tx) error {
		for _, band := range bands {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO profit_margins (copies_min, copies_max, margin_percentage_1, margin_percentage_2) VALUES (?, ?, ?, ?)`,
				band.MinCopies, intValue(band.MaxCopies), band.Primary.String(), decValue(band.Secondary)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceDiscountTiers replaces the bulk_discount_tiers table wholesale.
func (s *Store) ReplaceDiscountTiers(ctx context.Context, tiers []catalog.BulkDiscountTier) error {
	return s.replace(ctx, "bulk_discount_tiers", func(tx *sql.Tx) error {
		for _, tier := range tiers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bulk_discount_tiers (copies_threshold, discount_percentage) VALUES (?, ?)`,
				tier.Threshold, tier.Percent.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

func intValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func decValue(v *decimal.Decimal) interface{} {
	if v == nil {
		return nil
	}
	return v.String()
}

// replace deletes a table's rows and runs insert inside one transaction.
func (s *Store) replace(ctx context.Context, table string, insert func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return errors.Storage("clear "+table, err)
	}
	if err := insert(tx); err != nil {
		return errors.Storage("insert into "+table, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Storage("commit "+table, err)
	}
	s.log.Info("rate table replaced", zap.String("table", table))
	return nil
}

// Reset replaces every rate table with the stock defaults.
func (s *Store) Reset(ctx context.Context) error {
	defaults := catalog.Defaults()

	if err := s.ReplacePaperRates(ctx, defaults.PaperRates()); err != nil {
		return err
	}
	if err := s.ReplaceTonerRates(ctx, defaults.TonerRates()); err != nil {
		return err
	}
	if err := s.ReplaceCoverRates(ctx, defaults.CoverRates()); err != nil {
		return err
	}
	if err := s.ReplaceFinishingBands(ctx, defaults.FinishingBands()); err != nil {
		return err
	}
	if err := s.ReplacePackagingRates(ctx, defaults.PackagingRates()); err != nil {
		return err
	}
	if rate, ok := defaults.BHRRatePerHour(); ok {
		if err := s.SetBHRRate(ctx, rate); err != nil {
			return err
		}
	}
	if err := s.ReplaceServices(ctx, defaults.Services()); err != nil {
		return err
	}
	if err := s.ReplaceMarginBands(ctx, defaults.MarginBands()); err != nil {
		return err
	}
	if err := s.ReplaceDiscountTiers(ctx, defaults.DiscountTiers()); err != nil {
		return err
	}
	s.log.Info("catalog reset to defaults")
	return nil
}

// SeedIfEmpty seeds the default catalog into a database with no paper
// rates. A first boot goes through here.
func (s *Store) SeedIfEmpty(ctx context.Context) error {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM paper_costs`).Scan(&count); err != nil {
		return errors.Storage("count paper_costs", err)
	}
	if count > 0 {
		return nil
	}
	s.log.Info("empty catalog, seeding defaults")
	return s.Reset(ctx)
}
