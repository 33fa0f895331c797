// Package coach runs trade analyses for a learner session and feeds the
// results into the learning and risk engines.
package coach

import (
	"context"
	"strconv"
	"strings"
	"time"

	"dcoach/internal/learning"
	"dcoach/internal/models"
)

// Analyzer produces a coaching analysis for one trade.
type Analyzer interface {
	// Name returns the provider name used in logs and errors.
	Name() string
	// Analyze reviews trade in the context of the trader's history and the
	// concepts they have already learned.
	Analyze(ctx context.Context, trade models.Trade, history []models.Trade, learned []string) (*models.TradeAnalysis, error)
}

// StakeThreshold is the stake at or above which a losing trade is treated
// as an emotional sizing mistake.
const StakeThreshold = 20.0

// response is one canned diagnosis.
type response struct {
	mistake   string
	lesson    string
	actions   []string
	riskScore int
	conceptID models.ConceptID
}

var (
	lossCounterTrend = response{
		mistake: "Counter-trend entry during a high-momentum phase: the contract direction went against every trend signal.",
		lesson: "This is a momentum trap. When price moves sharply in one direction, betting on the reversal is swimming upstream. " +
			"Momentum (the speed and strength of price movement) has to exhaust itself first. Look for exhaustion signals such as " +
			"a Doji candle (a candle with almost no body) at a support level before trading against the trend.",
		actions: []string{
			"Before your next trade, check the 1-minute chart: if the last 5 candles keep making lower lows, only trade PUT or stay out.",
		},
		riskScore: 82,
		conceptID: "trend_analysis",
	}
	lossPsychology = response{
		mistake: "Raised the stake right after a loss: Martingale behavior driven by the urge to win it back.",
		lesson: "This is revenge trading: an emotionally charged trade placed to recover losses. Doubling the bet after each loss " +
			"is mathematically certain to wipe an account eventually. Professional traders do the opposite and reduce size after a loss.",
		actions: []string{
			"After 2 consecutive losses, take a 15-minute break.",
			"Never increase stake size after a loss.",
		},
		riskScore: 91,
		conceptID: "market_psychology",
	}
	lossRanging = response{
		mistake: "Entered a directional trade on a sideways, choppy market with no identifiable trend.",
		lesson: "Ranging markets (price bouncing between a ceiling and a floor) are the hardest environment for CALL/PUT trades; " +
			"the odds drop to a coin flip. RSI (Relative Strength Index, a 0-100 momentum gauge) near 50 inside a range means there is no edge.",
		actions: []string{
			"Before entering, ask whether you can draw a clear trend line in 3 seconds. If not, skip the trade.",
		},
		riskScore: 58,
		conceptID: "technical_indicators",
	}
	lossNoConfirmation = response{
		mistake: "Bet PUT against strong bullish momentum with zero confirmation signals.",
		lesson: "Trading against a clear trend without confirmation is one of the most common beginner errors. A confirmation signal " +
			"is a second piece of evidence for the idea, like RSI above 70 or a bearish engulfing candle at resistance.",
		actions: []string{
			"Require at least one indicator or candle pattern confirming your direction before you buy.",
		},
		riskScore: 68,
		conceptID: "technical_indicators",
	}
	winDefault = response{
		mistake: "No mistake: the entry aligned with the prevailing trend. Textbook execution.",
		lesson: "You read the market direction correctly and traded with it. The win came from a repeatable process, not luck. " +
			"The challenge now is consistency: doing the same thing 10, 20, 50 times.",
		actions: []string{
			"Document this setup in a trading journal with a chart screenshot.",
			"Before the next trade, ask whether it looks like this one.",
		},
		riskScore: 22,
		conceptID: "risk_management",
	}
)

// RuleAnalyzer is a deterministic, offline Analyzer that picks a diagnosis
// from the trade outcome, stake, and market context.
type RuleAnalyzer struct {
	catalog *learning.Catalog
	now     func() time.Time
}

// NewRuleAnalyzer creates a RuleAnalyzer that labels concepts from catalog.
func NewRuleAnalyzer(catalog *learning.Catalog) *RuleAnalyzer {
	if catalog == nil {
		catalog = learning.DefaultCatalog()
	}
	return &RuleAnalyzer{catalog: catalog, now: time.Now}
}

// Name returns the provider name.
func (a *RuleAnalyzer) Name() string {
	return "rules"
}

// Analyze implements Analyzer.
func (a *RuleAnalyzer) Analyze(ctx context.Context, trade models.Trade, history []models.Trade, learned []string) (*models.TradeAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := pick(trade)
	verdict := models.VerdictLoss
	if trade.IsWin() {
		verdict = models.VerdictWin
	}

	actions := make([]string, len(r.actions))
	copy(actions, r.actions)

	return &models.TradeAnalysis{
		TradeID:        trade.TransactionID,
		Verdict:        verdict,
		Mistake:        r.mistake,
		ConceptID:      r.conceptID,
		ConceptName:    a.catalog.NameOf(r.conceptID),
		Lesson:         r.lesson,
		ActionItems:    actions,
		RiskAssessment: models.AssessmentForScore(r.riskScore),
		RiskScore:      r.riskScore,
		Encouragement:  encouragement(verdict, learned),
		CreatedAt:      a.now(),
	}, nil
}

func pick(trade models.Trade) response {
	if trade.IsWin() {
		return winDefault
	}
	if trade.BuyPrice >= StakeThreshold {
		return lossPsychology
	}
	switch models.Trend(strings.ToLower(string(trade.MarketContext.Trend))) {
	case models.TrendSideways:
		return lossRanging
	case models.TrendBullish:
		if trade.ContractType == models.ContractPut {
			return lossNoConfirmation
		}
	}
	return lossCounterTrend
}

func encouragement(verdict models.Verdict, learned []string) string {
	switch {
	case verdict == models.VerdictWin:
		return "Great execution. Keep repeating the process that produced this trade."
	case len(learned) == 0:
		return "Every loss is tuition. Reviewing it is the first step most traders never take."
	case len(learned) == 1:
		return "You already studied " + learned[0] + ". Apply it before the next entry."
	default:
		return "You have " + strconv.Itoa(len(learned)) + " concepts unlocked. Use them as a checklist before you trade again."
	}
}
