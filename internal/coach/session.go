package coach

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "dcoach/internal/errors"
	"dcoach/internal/learning"
	"dcoach/internal/logging"
	"dcoach/internal/models"
	"dcoach/internal/risk"
	"dcoach/internal/store"
)

// Options configures a Session.
type Options struct {
	// Name identifies the learner; learning state and history are stored per name.
	Name string
	// Reject makes a concurrent Analyze call fail with ErrAnalysisInProgress
	// instead of waiting for the in-flight one.
	Reject bool
}

// Session owns one learner's learning state and serializes their analyses.
type Session struct {
	name     string
	reject   bool
	store    store.DataStore
	analyzer Analyzer
	catalog  *learning.Catalog
	logger   zerolog.Logger

	// analyzeMu is held for the whole analyze request
	analyzeMu sync.Mutex

	stateMu sync.RWMutex
	state   models.LearningState
}

// Snapshot is the dashboard view of a session.
type Snapshot struct {
	Session   string               `json:"session"`
	RiskScore int                  `json:"risk_score"`
	RiskLevel risk.Level           `json:"risk_level"`
	Findings  []risk.Finding       `json:"findings"`
	TradingIQ int                  `json:"trading_iq"`
	Learned   []string             `json:"learned"`
	Mastered  int                  `json:"mastered"`
	Summary   Summary              `json:"summary"`
	State     models.LearningState `json:"-"`
}

// NewSession loads the persisted learning state for opts.Name and returns a
// ready session. A missing or corrupt state starts from the initial state.
func NewSession(ctx context.Context, ds store.DataStore, analyzer Analyzer, catalog *learning.Catalog, opts Options, logger zerolog.Logger) (*Session, error) {
	if analyzer == nil {
		return nil, apperrors.ErrNoAnalyzer
	}
	if catalog == nil {
		catalog = learning.DefaultCatalog()
	}
	if opts.Name == "" {
		opts.Name = "default"
	}

	payload, err := ds.LoadLearningState(ctx, opts.Name)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load learning state")
	}

	logger = logging.WithSession(logger, opts.Name)
	state, ok := learning.DecodeState(payload, catalog)
	if !ok && payload != "" {
		logging.LogStateRecovered(logger, opts.Name, len(payload))
	}

	return &Session{
		name:     opts.Name,
		reject:   opts.Reject,
		store:    ds,
		analyzer: analyzer,
		catalog:  catalog,
		logger:   logger,
		state:    state,
	}, nil
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// Catalog returns the concept catalog the session labels concepts with.
func (s *Session) Catalog() *learning.Catalog {
	return s.catalog
}

// State returns a copy of the current learning state.
func (s *Session) State() models.LearningState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Clone()
}

// Analyze runs the analyzer on a stored trade, advances the learning state
// with the returned concept, and records the analysis in the session history.
// The learning state is left untouched when the analyzer fails.
func (s *Session) Analyze(ctx context.Context, tradeID string) (*models.TradeAnalysis, error) {
	if s.reject {
		if !s.analyzeMu.TryLock() {
			return nil, apperrors.ErrAnalysisInProgress
		}
	} else {
		s.analyzeMu.Lock()
	}
	defer s.analyzeMu.Unlock()

	logger := logging.WithOperation(logging.WithTrade(s.logger, tradeID), "analyze")
	start := time.Now()

	trade, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load trade history")
	}

	current := s.State()
	learned := learning.LearnedConceptNames(current, s.catalog)

	result, err := s.analyzer.Analyze(ctx, *trade, history, learned)
	if err != nil {
		logger.Error().Err(err).Str("provider", s.analyzer.Name()).Msg("Analysis failed")
		return nil, apperrors.NewAnalysisError(tradeID, s.analyzer.Name(), err)
	}
	if result.ConceptName == "" {
		result.ConceptName = s.catalog.NameOf(result.ConceptID)
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	next := learning.Advance(current, result.ConceptID)
	payload, err := learning.EncodeState(next)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode learning state")
	}
	if err := s.store.SaveLearningState(ctx, s.name, payload); err != nil {
		return nil, err
	}

	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()

	if err := s.store.SaveAnalysis(ctx, s.name, result); err != nil {
		logger.Warn().Err(err).Msg("Failed to record analysis history")
	}

	progress := next[result.ConceptID]
	logging.LogAnalysis(logger, tradeID, string(result.Verdict), string(result.ConceptID), result.RiskScore, time.Since(start))
	logging.LogConceptAdvance(logger, string(result.ConceptID), progress.Interactions, progress.Mastered, learning.TradingIQ(next))

	return result, nil
}

// Snapshot computes the risk score over the stored trades together with the
// current learning metrics.
func (s *Session) Snapshot(ctx context.Context) (*Snapshot, error) {
	trades, err := s.store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load trades")
	}

	assessment := risk.Assess(trades)
	logging.LogRiskScore(logging.WithOperation(s.logger, "snapshot"), assessment.Score, string(assessment.Level), assessment.Window, len(assessment.Findings))

	state := s.State()
	return &Snapshot{
		Session:   s.name,
		RiskScore: assessment.Score,
		RiskLevel: assessment.Level,
		Findings:  assessment.Findings,
		TradingIQ: learning.TradingIQ(state),
		Learned:   learning.LearnedConceptNames(state, s.catalog),
		Mastered:  learning.MasteredCount(state),
		Summary:   Summarize(trades),
		State:     state,
	}, nil
}

// History returns the session's analyses, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]models.TradeAnalysis, error) {
	return s.store.GetAnalyses(ctx, store.AnalysisFilter{Session: s.name, Limit: limit})
}

// Reset discards the session's learning progress.
func (s *Session) Reset(ctx context.Context) error {
	s.analyzeMu.Lock()
	defer s.analyzeMu.Unlock()

	if err := s.store.DeleteLearningState(ctx, s.name); err != nil {
		return err
	}

	s.stateMu.Lock()
	s.state = learning.InitialState(s.catalog)
	s.stateMu.Unlock()

	logger := logging.WithOperation(s.logger, "reset")
	logger.Info().Msg("Learning state reset")
	return nil
}
