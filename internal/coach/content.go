package coach

import "dcoach/internal/models"

// Lesson is a piece of study material linked to a concept.
type Lesson struct {
	ConceptID   models.ConceptID `json:"concept_id"`
	Title       string           `json:"title"`
	VideoID     string           `json:"video_id"`
	Description string           `json:"description"`
}

// URL returns the watch link for the lesson video.
func (l Lesson) URL() string {
	return "https://www.youtube.com/watch?v=" + l.VideoID
}

var lessons = map[models.ConceptID]Lesson{
	"risk_management": {
		ConceptID:   "risk_management",
		Title:       "Risk Management Essentials",
		VideoID:     "6b8_aN5y5Kw",
		Description: "Position sizing, stop-loss placement, and the 1-2% rule that professional traders rely on.",
	},
	"trend_analysis": {
		ConceptID:   "trend_analysis",
		Title:       "Trend Identification Masterclass",
		VideoID:     "rxY4K3x7hSw",
		Description: "How to identify bullish, bearish, and sideways markets using price action and moving averages before placing a trade.",
	},
	"market_psychology": {
		ConceptID:   "market_psychology",
		Title:       "Trading Psychology & Discipline",
		VideoID:     "b5sY3qXJbSs",
		Description: "Overcome revenge trading, FOMO, and emotional decision-making. Build the mental framework of a consistent trader.",
	},
	"technical_indicators": {
		ConceptID:   "technical_indicators",
		Title:       "RSI & MACD Explained",
		VideoID:     "mdZ7sPjL-XQ",
		Description: "The two most popular momentum indicators: Relative Strength Index and Moving Average Convergence Divergence.",
	},
}

// LessonFor returns the study material for a concept, if any exists.
func LessonFor(id models.ConceptID) (Lesson, bool) {
	l, ok := lessons[id]
	return l, ok
}
