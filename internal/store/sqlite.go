// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "dcoach/internal/errors"
	"dcoach/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Completed trades, keyed by transaction id
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		contract_id INTEGER,
		purchase_time INTEGER NOT NULL,
		sell_time INTEGER NOT NULL,
		buy_price REAL NOT NULL,
		sell_price REAL,
		profit REAL NOT NULL,
		underlying_symbol TEXT,
		underlying_name TEXT,
		contract_type TEXT,
		duration TEXT,
		payout REAL,
		trend TEXT,
		volatility TEXT,
		context_description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Coaching analyses per session
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		trade_id TEXT NOT NULL,
		verdict TEXT NOT NULL,
		mistake TEXT,
		concept_id TEXT NOT NULL,
		concept_name TEXT,
		lesson TEXT,
		action_items TEXT,
		risk_assessment TEXT,
		risk_score INTEGER,
		encouragement TEXT,
		created_at DATETIME NOT NULL
	);

	-- Serialized learning state per session
	CREATE TABLE IF NOT EXISTS learning_state (
		session TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_purchase_time ON trades(purchase_time);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(underlying_symbol);
	CREATE INDEX IF NOT EXISTS idx_analyses_session ON analyses(session, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbError wraps a driver failure so callers can match ErrDatabaseError.
func dbError(dataType, key, message string, err error) error {
	return apperrors.NewDataError(dataType, key, message, fmt.Errorf("%w: %w", apperrors.ErrDatabaseError, err))
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades Methods
// ============================================================================

// SaveTrades inserts or replaces trades in a single transaction.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("trades", "", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trades (id, contract_id, purchase_time, sell_time, buy_price, sell_price, profit,
			underlying_symbol, underlying_name, contract_type, duration, payout, trend, volatility, context_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return dbError("trades", "", "failed to prepare statement", err)
	}
	defer stmt.Close()

	for i, t := range trades {
		if t.TransactionID == "" {
			return apperrors.Wrapf(apperrors.ErrInvalidTrade, "trade %d has no transaction_id", i)
		}
		_, err := stmt.ExecContext(ctx, t.TransactionID, t.ContractID, t.PurchaseTime, t.SellTime, t.BuyPrice, t.SellPrice, t.Profit,
			t.UnderlyingSymbol, t.UnderlyingName, string(t.ContractType), t.Duration, t.Payout,
			string(t.MarketContext.Trend), string(t.MarketContext.Volatility), t.MarketContext.Description)
		if err != nil {
			return dbError("trades", t.TransactionID, "failed to insert trade", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError("trades", "", "failed to commit transaction", err)
	}

	return nil
}

const tradeColumns = `id, contract_id, purchase_time, sell_time, buy_price, sell_price, profit,
	underlying_symbol, underlying_name, contract_type, duration, payout, trend, volatility, context_description`

// GetTrades retrieves trades in chronological order.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND underlying_symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Since > 0 {
		query += " AND purchase_time >= ?"
		args = append(args, filter.Since)
	}
	if filter.Until > 0 {
		query += " AND purchase_time <= ?"
		args = append(args, filter.Until)
	}

	if filter.Limit > 0 {
		query = "SELECT * FROM (" + query + " ORDER BY purchase_time DESC, sell_time DESC, id DESC LIMIT ?)"
		args = append(args, filter.Limit)
	}
	query += " ORDER BY purchase_time ASC, sell_time ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("trades", filter.Symbol, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("trades", filter.Symbol, "error iterating trades", err)
	}

	return trades, nil
}

// GetTrade retrieves a single trade by transaction id.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrapf(apperrors.ErrTradeNotFound, "trade %s", id)
		}
		return nil, err
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row scanner) (*models.Trade, error) {
	var t models.Trade
	var contractType, trend, volatility string
	var sellPrice, payout sql.NullFloat64
	var contractID sql.NullInt64
	var symbol, name, duration, description sql.NullString

	err := row.Scan(&t.TransactionID, &contractID, &t.PurchaseTime, &t.SellTime, &t.BuyPrice, &sellPrice, &t.Profit,
		&symbol, &name, &contractType, &duration, &payout, &trend, &volatility, &description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, dbError("trades", "", "failed to scan trade", err)
	}

	t.ContractID = contractID.Int64
	t.SellPrice = sellPrice.Float64
	t.Payout = payout.Float64
	t.UnderlyingSymbol = symbol.String
	t.UnderlyingName = name.String
	t.Duration = duration.String
	t.ContractType = models.ContractType(contractType)
	t.MarketContext = models.MarketContext{
		Trend:       models.Trend(trend),
		Volatility:  models.Volatility(volatility),
		Description: description.String,
	}
	return &t, nil
}

// ============================================================================
// Analysis Methods
// ============================================================================

// SaveAnalysis appends an analysis to a session's history.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, session string, analysis *models.TradeAnalysis) error {
	actionItems, err := json.Marshal(analysis.ActionItems)
	if err != nil {
		return fmt.Errorf("failed to encode action items: %w", err)
	}
	createdAt := analysis.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (session, trade_id, verdict, mistake, concept_id, concept_name, lesson, action_items,
			risk_assessment, risk_score, encouragement, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, session, analysis.TradeID, string(analysis.Verdict), analysis.Mistake, string(analysis.ConceptID), analysis.ConceptName,
		analysis.Lesson, string(actionItems), string(analysis.RiskAssessment), analysis.RiskScore, analysis.Encouragement, createdAt.UTC())
	if err != nil {
		return dbError("analyses", analysis.TradeID, "failed to save analysis", err)
	}
	return nil
}

// GetAnalyses retrieves analyses, newest first.
func (s *SQLiteStore) GetAnalyses(ctx context.Context, filter AnalysisFilter) ([]models.TradeAnalysis, error) {
	query := `SELECT trade_id, verdict, mistake, concept_id, concept_name, lesson, action_items,
		risk_assessment, risk_score, encouragement, created_at FROM analyses WHERE 1=1`
	args := []interface{}{}

	if filter.Session != "" {
		query += " AND session = ?"
		args = append(args, filter.Session)
	}
	if filter.TradeID != "" {
		query += " AND trade_id = ?"
		args = append(args, filter.TradeID)
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("analyses", filter.Session, "failed to query analyses", err)
	}
	defer rows.Close()

	var analyses []models.TradeAnalysis
	for rows.Next() {
		var a models.TradeAnalysis
		var verdict, conceptID, assessment string
		var mistake, conceptName, lesson, actionItems, encouragement sql.NullString
		var riskScore sql.NullInt64

		if err := rows.Scan(&a.TradeID, &verdict, &mistake, &conceptID, &conceptName, &lesson, &actionItems,
			&assessment, &riskScore, &encouragement, &a.CreatedAt); err != nil {
			return nil, dbError("analyses", filter.Session, "failed to scan analysis", err)
		}

		a.Verdict = models.Verdict(verdict)
		a.ConceptID = models.ConceptID(conceptID)
		a.RiskAssessment = models.RiskAssessment(assessment)
		a.Mistake = mistake.String
		a.ConceptName = conceptName.String
		a.Lesson = lesson.String
		a.Encouragement = encouragement.String
		a.RiskScore = int(riskScore.Int64)
		if actionItems.Valid && actionItems.String != "" {
			if err := json.Unmarshal([]byte(actionItems.String), &a.ActionItems); err != nil {
				return nil, fmt.Errorf("failed to decode action items: %w", err)
			}
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("analyses", filter.Session, "error iterating analyses", err)
	}

	return analyses, nil
}

// ============================================================================
// Learning State Methods
// ============================================================================

// SaveLearningState stores the serialized learning state for a session.
func (s *SQLiteStore) SaveLearningState(ctx context.Context, session, payload string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learning_state (session, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, session, payload, time.Now().UTC())
	if err != nil {
		return dbError("learning_state", session, "failed to save learning state", err)
	}
	return nil
}

// LoadLearningState returns the stored payload, or "" if the session has none.
func (s *SQLiteStore) LoadLearningState(ctx context.Context, session string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM learning_state WHERE session = ?", session).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", dbError("learning_state", session, "failed to load learning state", err)
	}
	return payload, nil
}

// DeleteLearningState removes a session's stored state.
func (s *SQLiteStore) DeleteLearningState(ctx context.Context, session string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM learning_state WHERE session = ?", session); err != nil {
		return dbError("learning_state", session, "failed to delete learning state", err)
	}
	return nil
}
