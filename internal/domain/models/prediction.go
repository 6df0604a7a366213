package models

import "time"

// Direction is a model's view of where the price is headed.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Prediction is one model's forecast for one horizon. Immutable once created.
type Prediction struct {
	Symbol          string    `json:"symbol"`
	Model           string    `json:"model"`
	GeneratedAt     time.Time `json:"generated_at"`
	HorizonDays     int       `json:"horizon_days"`
	CurrentPrice    float64   `json:"current_price"`
	PredictedPrice  float64   `json:"predicted_price"`
	PredictedChange float64   `json:"predicted_change"` // percent
	Direction       Direction `json:"direction"`
	Confidence      float64   `json:"confidence"` // 0..100
	Features        string    `json:"features,omitempty"`
}

// EnsembleResult is the fused output of all participating models.
// Direction is a majority vote with ties resolved to neutral; Confidence is
// the confidence-weighted mean of participating model confidences.
type EnsembleResult struct {
	Symbol           string       `json:"symbol"`
	HorizonDays      int          `json:"horizon_days"`
	Direction        Direction    `json:"direction"`
	Confidence       float64      `json:"confidence"`
	AvgChange        float64      `json:"avg_change"` // percent
	Predictions      []Prediction `json:"predictions,omitempty"`
	DegradedModels   []string     `json:"degraded_models,omitempty"`
	InsufficientData bool         `json:"insufficient_data,omitempty"`
}
