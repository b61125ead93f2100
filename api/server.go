// Package api is the HTTP surface. Handlers are thin: input decoding,
// engine orchestration, output serialization. Pricing logic never
// lives here.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"printquote/core/catalog"
	"printquote/core/quote"
	"printquote/db"
	"printquote/internal/errors"
)

// Server serves the quoting and catalog administration endpoints. It
// holds the current catalog snapshot; admin mutations replace it
// wholesale via a fresh load from the store.
type Server struct {
	store   *db.Store
	log     *zap.Logger
	version string
	router  chi.Router

	mu  sync.RWMutex
	cat *catalog.Catalog
}

// NewServer creates a server and loads the initial catalog snapshot.
func NewServer(ctx context.Context, store *db.Store, log *zap.Logger, version string) (*Server, error) {
	cat, err := store.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:   store,
		log:     log,
		version: version,
		cat:     cat,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", s.handleQuote)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		r.Route("/admin/catalog", func(r chi.Router) {
			r.Post("/reset", s.handleReset)
			r.Post("/{table}", s.handleReplaceTable)
		})
	})
	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Catalog returns the currently active snapshot.
func (s *Server) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// reload swaps in a fresh snapshot from the store. On failure the
// previous snapshot stays active.
func (s *Server) reload(ctx context.Context) error {
	cat, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()
	s.log.Info("catalog snapshot activated", zap.String("snapshot_id", cat.ID()))
	return nil
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var dto QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		s.writeError(w, errors.Validation("request body is not valid JSON"), http.StatusBadRequest)
		return
	}

	req, err := dto.ToDomain()
	if err != nil {
		s.writeError(w, err, 0)
		return
	}

	cat := s.Catalog()
	bd, err := quote.ComputeQuote(cat, req)
	if err != nil {
		s.writeError(w, err, 0)
		return
	}

	quotationID := uuid.NewString()
	if bd.HasWarnings() {
		s.log.Warn("quote computed with missing rates",
			zap.String("quotation_id", quotationID),
			zap.Int("warnings", len(bd.Warnings)))
	}
	s.writeJSON(w, http.StatusOK, NewQuoteResponse(quotationID, cat, bd))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewCatalogResponse(s.Catalog()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.Reset(ctx); err != nil {
		s.writeError(w, err, 0)
		return
	}
	if err := s.reload(ctx); err != nil {
		s.writeError(w, err, 0)
		return
	}
	s.writeJSON(w, http.StatusOK, NewCatalogResponse(s.Catalog()))
}

func (s *Server) handleReplaceTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	table := chi.URLParam(r, "table")

	if err := s.replaceTable(ctx, table, r); err != nil {
		s.writeError(w, err, 0)
		return
	}
	if err := s.reload(ctx); err != nil {
		// The write landed but produced an inconsistent catalog; the
		// previous snapshot stays active until the data is fixed.
		s.writeError(w, err, 0)
		return
	}
	s.writeJSON(w, http.StatusOK, NewCatalogResponse(s.Catalog()))
}

func (s *Server) replaceTable(ctx context.Context, table string, r *http.Request) error {
	switch table {
	case "paper":
		var rows []PaperRateRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		rates := make([]catalog.PaperRate, 0, len(rows))
		for _, row := range rows {
			cost, err := parseDec(row.CostPerPage, "cost_per_page")
			if err != nil {
				return err
			}
			rates = append(rates, catalog.PaperRate{
				Key:         catalog.PaperKey{PaperType: row.PaperType, Size: catalog.BookSize(row.Size)},
				CostPerPage: cost,
			})
		}
		return s.store.ReplacePaperRates(ctx, rates)

	case "toner":
		var rows []TonerRateRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		rates := make([]catalog.TonerRate, 0, len(rows))
		for _, row := range rows {
			cost, err := parseDec(row.CostPerPage, "cost_per_page")
			if err != nil {
				return err
			}
			rates = append(rates, catalog.TonerRate{
				Key:         catalog.TonerKey{ColorMode: row.ColorType, Size: catalog.BookSize(row.Size)},
				CostPerPage: cost,
			})
		}
		return s.store.ReplaceTonerRates(ctx, rates)

	case "cover":
		var rows []CoverRateRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		rates := make([]catalog.CoverRate, 0, len(rows))
		for _, row := range rows {
			cost, err := parseDec(row.Cost, "cost")
			if err != nil {
				return err
			}
			rates = append(rates, catalog.CoverRate{
				Key:         catalog.CoverKey{CoverType: row.CoverType, Size: catalog.BookSize(row.Size)},
				CostPerCopy: cost,
			})
		}
		return s.store.ReplaceCoverRates(ctx, rates)

	case "finishing":
		var rows []FinishingBandRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		bands := make([]catalog.FinishingBand, 0, len(rows))
		for _, row := range rows {
			cost, err := parseDec(row.Cost, "cost")
			if err != nil {
				return err
			}
			bands = append(bands, catalog.FinishingBand{
				MinPages: row.PageRangeMin, MaxPages: row.PageRangeMax, CostPerCopy: cost,
			})
		}
		return s.store.ReplaceFinishingBands(ctx, bands)

	case "packaging":
		var rows []PackagingRateRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		rates := make([]catalog.PackagingRate, 0, len(rows))
		for _, row := range rows {
			cost, err := parseDec(row.Cost, "cost")
			if err != nil {
				return err
			}
			rates = append(rates, catalog.PackagingRate{
				Size: catalog.BookSize(row.Size), CostPerCopy: cost,
			})
		}
		return s.store.ReplacePackagingRates(ctx, rates)

	case "bhr":
		var row BHRSettingRow
		if err := decodeBody(r, &row); err != nil {
			return err
		}
		rate, err := parseDec(row.RatePerHour, "rate_per_hour")
		if err != nil {
			return err
		}
		return s.store.SetBHRRate(ctx, rate)

	case "services":
		var rows []ServiceRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		services := make([]catalog.AdditionalService, 0, len(rows))
		for _, row := range rows {
			cost, err := parseDec(row.Cost, "cost")
			if err != nil {
				return err
			}
			services = append(services, catalog.AdditionalService{
				Name: row.ServiceName, Cost: cost, Default: row.IsDefault,
			})
		}
		return s.store.ReplaceServices(ctx, services)

	case "margins":
		var rows []MarginBandRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		bands := make([]catalog.ProfitMarginBand, 0, len(rows))
		for _, row := range rows {
			primary, err := parseDec(row.MarginPercentage1, "margin_percentage_1")
			if err != nil {
				return err
			}
			band := catalog.ProfitMarginBand{
				MinCopies: row.CopiesMin, MaxCopies: row.CopiesMax, Primary: primary,
			}
			if row.MarginPercentage2 != nil {
				secondary, err := parseDec(*row.MarginPercentage2, "margin_percentage_2")
				if err != nil {
					return err
				}
				band.Secondary = &secondary
			}
			bands = append(bands, band)
		}
		return s.store.ReplaceMarginBands(ctx, bands)

	case "discounts":
		var rows []DiscountTierRow
		if err := decodeBody(r, &rows); err != nil {
			return err
		}
		tiers := make([]catalog.BulkDiscountTier, 0, len(rows))
		for _, row := range rows {
			pct, err := parseDec(row.DiscountPercentage, "discount_percentage")
			if err != nil {
				return err
			}
			tiers = append(tiers, catalog.BulkDiscountTier{
				Threshold: row.CopiesThreshold, Percent: pct,
			})
		}
		return s.store.ReplaceDiscountTiers(ctx, tiers)

	default:
		return errors.NotFound("rate table", table)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Validation("request body is not valid JSON")
	}
	return nil
}

func parseDec(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Validationf("%s %q: not a decimal", field, s)
	}
	return d, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses. A status of 0
// means derive it from the error type.
func (s *Server) writeError(w http.ResponseWriter, err error, status int) {
	body := ErrorResponse{Error: ErrorBody{Type: string(errors.TypeInternal), Message: err.Error()}}
	if e, ok := err.(*errors.Error); ok {
		body.Error.Type = string(e.Type)
		body.Error.Message = e.Message
	}

	if status == 0 {
		switch {
		case errors.IsType(err, errors.TypeValidation), errors.IsType(err, errors.TypeDiscount):
			status = http.StatusUnprocessableEntity
		case errors.IsType(err, errors.TypeCatalog):
			status = http.StatusConflict
		case errors.IsType(err, errors.TypeNotFound):
			status = http.StatusNotFound
		default:
			status = http.StatusInternalServerError
			s.log.Error("internal error", zap.Error(err))
		}
	}
	s.writeJSON(w, status, body)
}
