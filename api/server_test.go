package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printquote/db"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "printquote.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.Migrate(conn))
	store := db.NewStore(conn, zap.NewNop())
	require.NoError(t, store.SeedIfEmpty(context.Background()))

	srv, err := NewServer(context.Background(), store, zap.NewNop(), "test")
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestQuoteEndpoint(t *testing.T) {
	srv := newTestServer(t)

	margin := "20"
	rec := doJSON(t, srv, http.MethodPost, "/api/quote", QuoteRequest{
		BookSize:      "A5",
		PaperType:     "Cream 80gsm",
		InteriorColor: "B/W",
		CoverType:     "Soft",
		PageCount:     200,
		Copies:        500,
		MarginPercent: &margin,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "350000", resp.PaperCost)
	assert.Equal(t, "100000", resp.TonerCost)
	assert.Equal(t, "82500", resp.CoverCost)
	assert.Equal(t, "60000", resp.FinishingCost)
	assert.Equal(t, "7000", resp.PackagingCost)
	assert.Equal(t, "599500", resp.RawCost)
	assert.Equal(t, "119900", resp.MarginAmount)
	assert.Equal(t, "719400", resp.FinalTotal)
	assert.NotEmpty(t, resp.QuotationID)
	assert.Equal(t, srv.Catalog().ID(), resp.SnapshotID)
	assert.Empty(t, resp.Warnings)
}

func TestQuoteEndpointMissingRateWarns(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/quote", QuoteRequest{
		BookSize:      "A5",
		PaperType:     "Parchment 120gsm",
		InteriorColor: "B/W",
		CoverType:     "Soft",
		PageCount:     200,
		Copies:        500,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "0", resp.PaperCost)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "paper", resp.Warnings[0].Category)
	assert.Equal(t, "Parchment 120gsm/A5", resp.Warnings[0].Key)
}

func TestQuoteEndpointValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/quote", QuoteRequest{
		BookSize:      "A5",
		PaperType:     "Cream 80gsm",
		InteriorColor: "B/W",
		CoverType:     "Soft",
		PageCount:     -1,
		Copies:        500,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Type)
}

func TestQuoteEndpointBadJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/quote", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"test"}`, rec.Body.String())
}

func TestCatalogEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, srv.Catalog().ID(), resp.SnapshotID)
	assert.Len(t, resp.PaperRates, 18)
	require.NotNil(t, resp.BHR)
	assert.Equal(t, "3000", resp.BHR.RatePerHour)
}

func TestReplaceTableActivatesNewSnapshot(t *testing.T) {
	srv := newTestServer(t)
	before := srv.Catalog().ID()

	rows := []PaperRateRow{
		{PaperType: "Cream 80gsm", Size: "A5", CostPerPage: "4.0"},
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/admin/catalog/paper", rows)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, before, resp.SnapshotID)
	require.Len(t, resp.PaperRates, 1)
	assert.Equal(t, "4", resp.PaperRates[0].CostPerPage)

	// New quotes price against the replaced table.
	quoteRec := doJSON(t, srv, http.MethodPost, "/api/quote", QuoteRequest{
		BookSize:      "A5",
		PaperType:     "Cream 80gsm",
		InteriorColor: "B/W",
		CoverType:     "Soft",
		PageCount:     200,
		Copies:        500,
	})
	require.Equal(t, http.StatusOK, quoteRec.Code)
	var qr QuoteResponse
	require.NoError(t, json.Unmarshal(quoteRec.Body.Bytes(), &qr))
	assert.Equal(t, "400000", qr.PaperCost)
}

func TestReplaceUnknownTable(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/admin/catalog/shipping", []PaperRateRow{})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Type)
}

func TestReplaceInvalidDataKeepsOldSnapshot(t *testing.T) {
	srv := newTestServer(t)
	before := srv.Catalog().ID()

	// Overlapping finishing bands persist but fail the snapshot build,
	// so the previous snapshot stays active.
	max := 140
	rows := []FinishingBandRow{
		{PageRangeMin: 50, PageRangeMax: &max, Cost: "70"},
		{PageRangeMin: 100, PageRangeMax: nil, Cost: "120"},
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/admin/catalog/finishing", rows)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CATALOG_ERROR", resp.Error.Type)
	assert.Equal(t, before, srv.Catalog().ID())
}

func TestResetEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rows := []DiscountTierRow{{CopiesThreshold: 10, DiscountPercentage: "50"}}
	rec := doJSON(t, srv, http.MethodPost, "/api/admin/catalog/discounts", rows)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/admin/catalog/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.DiscountTiers, 3)
	assert.Equal(t, 250, resp.DiscountTiers[0].CopiesThreshold)
}
