package models

import "time"

// Recommendation is the synthesized trading stance.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationHold Recommendation = "HOLD"
	RecommendationSell Recommendation = "SELL"
)

// RiskLevel buckets the combined volatility/drawdown assessment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskAssessment describes expected adverse excursion, not a forecast.
type RiskAssessment struct {
	Level             RiskLevel `json:"level"`
	VolatilityScore   float64   `json:"volatility_score"`   // 0..100
	DrawdownPotential float64   `json:"drawdown_potential"` // percent, peak-to-trough
	Factors           []string  `json:"factors,omitempty"`
}

// Summaries holds the deterministic natural-language report texts.
type Summaries struct {
	Technical   string `json:"technical"`
	Fundamental string `json:"fundamental"`
	Prediction  string `json:"prediction"`
	Overall     string `json:"overall"`
}

// AnalysisReport is the synthesized output for one instrument at one report
// timestamp. Identity is (Symbol, ReportDate); regenerating replaces the
// prior report. FundamentalScore is nil when no ratios were available.
type AnalysisReport struct {
	Symbol       string    `json:"symbol"`
	ReportDate   time.Time `json:"report_date"`
	CurrentPrice float64   `json:"current_price"`

	TechnicalScore   float64  `json:"technical_score"`
	FundamentalScore *float64 `json:"fundamental_score,omitempty"`
	OverallScore     float64  `json:"overall_score"`

	Recommendation           Recommendation `json:"recommendation"`
	RecommendationConfidence float64        `json:"recommendation_confidence"`

	Risk      RiskAssessment `json:"risk"`
	Summaries Summaries      `json:"summaries"`

	Indicators   *IndicatorSet        `json:"indicators,omitempty"`
	Fundamentals *FundamentalSnapshot `json:"fundamentals,omitempty"`
	Ensemble     *EnsembleResult      `json:"ensemble,omitempty"`
}
