// Package risk scores a trade history for harmful behavioral patterns.
package risk

import "dcoach/internal/models"

// Scoring constants. The score is additive per rule and clamped once at the end.
const (
	BaselineScore = 50
	WindowSize    = 10

	MartingaleMultiplier = 1.5
	MartingalePoints     = 15

	HighLossRate       = 0.7
	HighLossRatePoints = 15
	LossRate           = 0.5
	LossRatePoints     = 5

	StakeOutlierMultiplier = 3.0
	StakeOutlierPoints     = 10

	RevengeGapSeconds = 300
	RevengePoints     = 5

	MinScore = 0
	MaxScore = 100
)

// Rule names a behavioral pattern detected in the window.
type Rule string

const (
	RuleMartingale     Rule = "MARTINGALE"
	RuleHighLossRate   Rule = "HIGH_LOSS_RATE"
	RuleLossRate       Rule = "ELEVATED_LOSS_RATE"
	RuleStakeOutlier   Rule = "STAKE_OUTLIER"
	RuleRevengeTrading Rule = "REVENGE_TRADING"
)

// Finding is one contribution to the score.
// Index is the window position of the trade that triggered it, or -1 for window-wide rules.
type Finding struct {
	Rule   Rule
	Points int
	Index  int
}

// Assessment is a risk score together with the findings that produced it.
type Assessment struct {
	Score    int
	Level    Level
	Window   int
	LossRate float64
	Findings []Finding
}

// ComputeRiskScore returns a 0-100 score for the most recent trades.
// Trades must be in chronological order; they are never re-sorted.
func ComputeRiskScore(trades []models.Trade) int {
	return Assess(trades).Score
}

// Assess scores the most recent WindowSize trades and records every rule that fired.
func Assess(trades []models.Trade) Assessment {
	window := recent(trades)
	a := Assessment{Score: BaselineScore, Window: len(window)}
	if len(window) == 0 {
		a.Level = LevelFor(a.Score)
		return a
	}

	total := BaselineScore
	add := func(rule Rule, points, index int) {
		total += points
		a.Findings = append(a.Findings, Finding{Rule: rule, Points: points, Index: index})
	}

	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1], window[i]
		if prev.IsLoss() && cur.BuyPrice >= prev.BuyPrice*MartingaleMultiplier {
			add(RuleMartingale, MartingalePoints, i)
		}
	}

	losses := 0
	for _, t := range window {
		if t.IsLoss() {
			losses++
		}
	}
	a.LossRate = float64(losses) / float64(len(window))
	if a.LossRate > HighLossRate {
		add(RuleHighLossRate, HighLossRatePoints, -1)
	} else if a.LossRate > LossRate {
		add(RuleLossRate, LossRatePoints, -1)
	}

	if maxStake(window) > avgStake(window)*StakeOutlierMultiplier {
		add(RuleStakeOutlier, StakeOutlierPoints, -1)
	}

	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1], window[i]
		if cur.PurchaseTime-prev.SellTime < RevengeGapSeconds && prev.IsLoss() {
			add(RuleRevengeTrading, RevengePoints, i)
		}
	}

	a.Score = clamp(total)
	a.Level = LevelFor(a.Score)
	return a
}

func recent(trades []models.Trade) []models.Trade {
	if len(trades) > WindowSize {
		return trades[len(trades)-WindowSize:]
	}
	return trades
}

func avgStake(window []models.Trade) float64 {
	var sum float64
	for _, t := range window {
		sum += t.BuyPrice
	}
	return sum / float64(len(window))
}

func maxStake(window []models.Trade) float64 {
	max := window[0].BuyPrice
	for _, t := range window[1:] {
		if t.BuyPrice > max {
			max = t.BuyPrice
		}
	}
	return max
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
