package risk

// Level is the display band for a risk score.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// LevelFor maps a score to its band.
func LevelFor(score int) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Describe returns a one-line explanation of a rule for terminal output.
func (r Rule) Describe() string {
	switch r {
	case RuleMartingale:
		return "Stake raised by 50% or more right after a loss"
	case RuleHighLossRate:
		return "More than 70% of recent trades were losses"
	case RuleLossRate:
		return "More than half of recent trades were losses"
	case RuleStakeOutlier:
		return "Largest stake is over 3x the average stake"
	case RuleRevengeTrading:
		return "Re-entered within 5 minutes of a loss"
	default:
		return string(r)
	}
}
