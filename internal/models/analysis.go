package models

import "time"

// TradeAnalysis is the coaching critique produced for a single trade.
type TradeAnalysis struct {
	TradeID        string         `json:"trade_id"`
	Verdict        Verdict        `json:"verdict"`
	Mistake        string         `json:"mistake"`
	ConceptID      ConceptID      `json:"concept_id"`
	ConceptName    string         `json:"concept_name"`
	Lesson         string         `json:"lesson"`
	ActionItems    []string       `json:"action_items"`
	RiskAssessment RiskAssessment `json:"risk_assessment"`
	RiskScore      int            `json:"risk_score"`
	Encouragement  string         `json:"encouragement"`
	CreatedAt      time.Time      `json:"created_at"`
}
