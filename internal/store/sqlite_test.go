package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dcoach/internal/errors"
	"dcoach/internal/models"
)

func TestGetTrade_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTrade(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestSaveTrades_RejectsMissingID(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveTrades(context.Background(), []models.Trade{{BuyPrice: 10}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTrade)
}

func TestSaveTrades_ReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := generateTestTrades("R_100", 1, 10, 60)[0]
	require.NoError(t, store.SaveTrades(ctx, []models.Trade{trade}))

	trade.Profit = 42
	require.NoError(t, store.SaveTrades(ctx, []models.Trade{trade}))

	all, err := store.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 42.0, all[0].Profit)

	got, err := store.GetTrade(ctx, trade.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, trade, *got)
}

func TestGetTrades_TimeRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trades := generateTestTrades("R_50", 5, 10, 100)
	require.NoError(t, store.SaveTrades(ctx, trades))

	got, err := store.GetTrades(ctx, TradeFilter{Since: trades[1].PurchaseTime, Until: trades[3].PurchaseTime})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, trades[1].TransactionID, got[0].TransactionID)
	assert.Equal(t, trades[3].TransactionID, got[2].TransactionID)
}

func TestAnalyses_NewestFirstPerSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, store.SaveAnalysis(ctx, "alice", &models.TradeAnalysis{
			TradeID:        id,
			Verdict:        models.VerdictLoss,
			ConceptID:      "risk_management",
			ConceptName:    "Risk Management",
			ActionItems:    []string{"Cap stake at 2%", "Pause after a loss"},
			RiskAssessment: models.RiskHigh,
			RiskScore:      70,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.SaveAnalysis(ctx, "bob", &models.TradeAnalysis{
		TradeID: "t9", Verdict: models.VerdictWin, ConceptID: "trend_analysis", CreatedAt: base,
	}))

	got, err := store.GetAnalyses(ctx, AnalysisFilter{Session: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "t3", got[0].TradeID)
	assert.Equal(t, []string{"Cap stake at 2%", "Pause after a loss"}, got[0].ActionItems)
	assert.Equal(t, models.RiskHigh, got[0].RiskAssessment)
	assert.Equal(t, 70, got[0].RiskScore)

	limited, err := store.GetAnalyses(ctx, AnalysisFilter{Session: "alice", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	byTrade, err := store.GetAnalyses(ctx, AnalysisFilter{TradeID: "t9"})
	require.NoError(t, err)
	require.Len(t, byTrade, 1)
	assert.Equal(t, models.VerdictWin, byTrade[0].Verdict)
}

func TestLearningState_MissingAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload, err := store.LoadLearningState(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, payload)

	require.NoError(t, store.SaveLearningState(ctx, "alice", `{"a":1}`))
	require.NoError(t, store.SaveLearningState(ctx, "alice", `{"a":2}`))
	payload, err = store.LoadLearningState(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, payload)

	require.NoError(t, store.DeleteLearningState(ctx, "alice"))
	payload, err = store.LoadLearningState(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestClosedStore_WrapsDatabaseErrors(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.GetTrades(context.Background(), TradeFilter{Symbol: "R_100"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDatabaseError)

	var dataErr *apperrors.DataError
	require.True(t, apperrors.As(err, &dataErr))
	assert.Equal(t, "trades", dataErr.DataType)
	assert.Equal(t, "R_100", dataErr.Key)

	err = store.SaveLearningState(context.Background(), "alice", "{}")
	assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
}
