// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"dcoach/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Trades
	SaveTrades(ctx context.Context, trades []models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	GetTrade(ctx context.Context, id string) (*models.Trade, error)

	// Analysis history
	SaveAnalysis(ctx context.Context, session string, analysis *models.TradeAnalysis) error
	GetAnalyses(ctx context.Context, filter AnalysisFilter) ([]models.TradeAnalysis, error)

	// Learning state blobs, opaque to the store
	SaveLearningState(ctx context.Context, session, payload string) error
	LoadLearningState(ctx context.Context, session string) (string, error)
	DeleteLearningState(ctx context.Context, session string) error

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
// Results are always in chronological order; Limit keeps the most recent trades.
type TradeFilter struct {
	Symbol string
	Since  int64 // purchase time, seconds since epoch
	Until  int64
	Limit  int
}

// AnalysisFilter represents filters for querying analysis history.
// Results are newest first.
type AnalysisFilter struct {
	Session string
	TradeID string
	Limit   int
}
