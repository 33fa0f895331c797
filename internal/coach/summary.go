package coach

import (
	"math"

	"dcoach/internal/models"
)

// Summary holds the headline statistics for a set of trades.
type Summary struct {
	Trades   int     `json:"trades"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	WinRate  int     `json:"win_rate"`
	TotalPnL float64 `json:"total_pnl"`
}

// Summarize counts wins and losses and totals profit. Any trade that is not a
// win counts as a loss; WinRate is a rounded percentage, 0 for no trades.
func Summarize(trades []models.Trade) Summary {
	var s Summary
	s.Trades = len(trades)
	for _, t := range trades {
		if t.IsWin() {
			s.Wins++
		}
		s.TotalPnL += t.Profit
	}
	s.Losses = s.Trades - s.Wins
	if s.Trades > 0 {
		s.WinRate = int(math.Round(float64(s.Wins) / float64(s.Trades) * 100))
	}
	return s
}
