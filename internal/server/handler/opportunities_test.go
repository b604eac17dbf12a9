package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

type fakeOpportunityStore struct {
	opps      []domain.ArbitrageOpportunity
	stats     domain.OpportunityStats
	err       error
	lastLimit int
	lastDays  int
}

func (f *fakeOpportunityStore) Insert(context.Context, domain.ArbitrageOpportunity) error {
	return f.err
}

func (f *fakeOpportunityStore) ListRecent(_ context.Context, limit int) ([]domain.ArbitrageOpportunity, error) {
	f.lastLimit = limit
	return f.opps, f.err
}

func (f *fakeOpportunityStore) ListByPair(context.Context, domain.TokenPair) ([]domain.ArbitrageOpportunity, error) {
	return f.opps, f.err
}

func (f *fakeOpportunityStore) ListBefore(context.Context, time.Time) ([]domain.ArbitrageOpportunity, error) {
	return f.opps, f.err
}

func (f *fakeOpportunityStore) Stats(_ context.Context, days int) (domain.OpportunityStats, error) {
	f.lastDays = days
	return f.stats, f.err
}

func (f *fakeOpportunityStore) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, f.err
}

func TestListRecent(t *testing.T) {
	store := &fakeOpportunityStore{
		opps: []domain.ArbitrageOpportunity{
			domain.NewOpportunity(
				domain.TokenPair{Token0Symbol: "WETH", Token1Symbol: "USDC"},
				"Uniswap", "QuickSwap",
				decimal.NewFromInt(2000), decimal.NewFromInt(2010),
				decimal.NewFromInt(1000), decimal.NewFromInt(2),
			),
		},
	}
	h := NewOpportunityHandler(store, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, store.lastLimit)

	var got []domain.ArbitrageOpportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Uniswap", got[0].BuyDex)
}

func TestListRecentLimitClamped(t *testing.T) {
	store := &fakeOpportunityStore{}
	h := NewOpportunityHandler(store, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities?limit=9999", nil)
	h.ListRecent(httptest.NewRecorder(), req)
	assert.Equal(t, 500, store.lastLimit)

	req = httptest.NewRequest(http.MethodGet, "/api/opportunities?limit=abc", nil)
	h.ListRecent(httptest.NewRecorder(), req)
	assert.Equal(t, 50, store.lastLimit)
}

func TestListRecentEmptyIsJSONArray(t *testing.T) {
	h := NewOpportunityHandler(&fakeOpportunityStore{}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestListRecentStoreError(t *testing.T) {
	h := NewOpportunityHandler(&fakeOpportunityStore{err: errors.New("db down")}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to list opportunities")
}

func TestStats(t *testing.T) {
	store := &fakeOpportunityStore{
		stats: domain.OpportunityStats{
			TotalOpportunities: 42,
			TotalProfit:        decimal.NewFromInt(1234),
		},
	}
	h := NewOpportunityHandler(store, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities/stats?days=30", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, store.lastDays)

	var got domain.OpportunityStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.TotalOpportunities)
}

func TestQueryInt(t *testing.T) {
	newReq := func(query string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	}

	assert.Equal(t, 50, queryInt(newReq(""), "limit", 50, 500))
	assert.Equal(t, 10, queryInt(newReq("limit=10"), "limit", 50, 500))
	assert.Equal(t, 500, queryInt(newReq("limit=1000"), "limit", 50, 500))
	assert.Equal(t, 50, queryInt(newReq("limit=-5"), "limit", 50, 500))
	assert.Equal(t, 50, queryInt(newReq("limit=zero"), "limit", 50, 500))
	// max of zero disables clamping.
	assert.Equal(t, 1000, queryInt(newReq("limit=1000"), "limit", 50, 0))
}
