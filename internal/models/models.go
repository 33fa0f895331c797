// Package models provides domain models for the trading coach.
package models

// ContractType is the direction of an options-style contract.
type ContractType string

const (
	ContractCall ContractType = "CALL"
	ContractPut  ContractType = "PUT"
)

// Trend is the prevailing market direction when a trade was placed.
type Trend string

const (
	TrendBullish  Trend = "bullish"
	TrendBearish  Trend = "bearish"
	TrendSideways Trend = "sideways"
)

// Volatility is the price movement intensity when a trade was placed.
type Volatility string

const (
	VolatilityLow    Volatility = "low"
	VolatilityMedium Volatility = "medium"
	VolatilityHigh   Volatility = "high"
)

// Verdict is the outcome label attached to an analysis.
type Verdict string

const (
	VerdictWin  Verdict = "WIN"
	VerdictLoss Verdict = "LOSS"
)

// RiskAssessment is the provider's qualitative risk label for a single trade.
type RiskAssessment string

const (
	RiskLow      RiskAssessment = "low"
	RiskMedium   RiskAssessment = "medium"
	RiskHigh     RiskAssessment = "high"
	RiskCritical RiskAssessment = "critical"
)

// AssessmentForScore maps a 0-100 provider risk score to a qualitative label.
func AssessmentForScore(score int) RiskAssessment {
	switch {
	case score >= 80:
		return RiskCritical
	case score >= 60:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}
