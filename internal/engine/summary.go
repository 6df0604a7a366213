package engine

import (
	"fmt"
	"strings"

	"EquityLens/internal/domain/models"
	"EquityLens/internal/engine/fundamental"
	"EquityLens/internal/engine/technical"
)

// Summary builders. Everything here is a pure function of the computed
// results: same inputs, same sentence. No timestamps, no randomness.

func technicalSummary(res technical.Result) string {
	if len(res.Signals) == 0 {
		return "No technical indicators could be computed from the available history."
	}

	var bull, bear, neutral int
	for _, s := range res.Signals {
		switch s.Direction {
		case models.DirectionBullish:
			bull++
		case models.DirectionBearish:
			bear++
		default:
			neutral++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Technical score %.1f with %d bullish, %d bearish, and %d neutral signals.",
		res.Score, bull, bear, neutral)
	for _, s := range res.Signals {
		if s.Direction != models.DirectionNeutral {
			fmt.Fprintf(&b, " %s.", capitalize(s.Detail))
		}
	}
	return b.String()
}

func fundamentalSummary(res fundamental.Result) string {
	if res.Composite == nil {
		return "No fundamental data was available; the recommendation rests on price action alone."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fundamental score %.1f", *res.Composite)
	parts := make([]string, 0, 4)
	if v := res.Categories.Valuation; v != nil {
		parts = append(parts, fmt.Sprintf("valuation %.0f", *v))
	}
	if v := res.Categories.Health; v != nil {
		parts = append(parts, fmt.Sprintf("financial health %.0f", *v))
	}
	if v := res.Categories.Growth; v != nil {
		parts = append(parts, fmt.Sprintf("growth %.0f", *v))
	}
	if v := res.Categories.Profitability; v != nil {
		parts = append(parts, fmt.Sprintf("profitability %.0f", *v))
	}
	fmt.Fprintf(&b, " (%s).", strings.Join(parts, ", "))
	for _, n := range res.Notes {
		fmt.Fprintf(&b, " Note: %s.", n)
	}
	return b.String()
}

func predictionSummary(res *models.EnsembleResult) string {
	if res == nil || res.InsufficientData {
		return "Price history is too short for the forecast models; no prediction was made."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Models agree on a %s outlook over %d days (confidence %.0f, average projected change %+.1f%%).",
		res.Direction, res.HorizonDays, res.Confidence, res.AvgChange)
	for _, p := range res.Predictions {
		fmt.Fprintf(&b, " %s projects %+.1f%%.", p.Model, p.PredictedChange)
	}
	if len(res.DegradedModels) > 0 {
		fmt.Fprintf(&b, " Excluded: %s.", strings.Join(res.DegradedModels, "; "))
	}
	return b.String()
}

func overallSummary(r *models.AnalysisReport, predScore *float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (overall %.1f, confidence %.0f).",
		r.Symbol, r.Recommendation, r.OverallScore, r.RecommendationConfidence)
	fmt.Fprintf(&b, " Technical %.1f", r.TechnicalScore)
	if r.FundamentalScore != nil {
		fmt.Fprintf(&b, ", fundamental %.1f", *r.FundamentalScore)
	} else {
		b.WriteString(", fundamental unavailable")
	}
	if predScore != nil {
		fmt.Fprintf(&b, ", prediction %.1f.", *predScore)
	} else {
		b.WriteString(", prediction unavailable.")
	}
	fmt.Fprintf(&b, " Risk %s (volatility %.0f, drawdown %.1f%%).",
		r.Risk.Level, r.Risk.VolatilityScore, r.Risk.DrawdownPotential)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
