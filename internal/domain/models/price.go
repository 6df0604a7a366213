package models

import (
	"fmt"
	"time"
)

// PricePoint represents one daily OHLCV bar for an instrument.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	VWAP      *float64  `json:"vwap,omitempty"`
	Trades    *int64    `json:"trades,omitempty"`
}

// PriceSeries is an ascending-by-timestamp bar sequence for one symbol.
// Gaps (missing trading days) are legal; duplicates and reordering are not.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// ConflictingInputError reports a malformed input series. It is fatal for
// the instrument's run; no partial report is produced.
type ConflictingInputError struct {
	Symbol string
	Index  int
	Reason string
}

func (e *ConflictingInputError) Error() string {
	return fmt.Sprintf("conflicting input for %s at point %d: %s", e.Symbol, e.Index, e.Reason)
}

// Validate checks the strictly-ascending-timestamp invariant.
func (s *PriceSeries) Validate() error {
	for i := 1; i < len(s.Points); i++ {
		prev, cur := s.Points[i-1].Timestamp, s.Points[i].Timestamp
		if cur.Equal(prev) {
			return &ConflictingInputError{Symbol: s.Symbol, Index: i, Reason: "duplicate timestamp"}
		}
		if cur.Before(prev) {
			return &ConflictingInputError{Symbol: s.Symbol, Index: i, Reason: "timestamp not ascending"}
		}
	}
	return nil
}

func (s *PriceSeries) Len() int { return len(s.Points) }

// Closes extracts closing prices in series order.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Highs extracts high prices in series order.
func (s *PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.High
	}
	return out
}

// Lows extracts low prices in series order.
func (s *PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Low
	}
	return out
}

// Volumes extracts volumes in series order.
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

// LastClose returns the most recent closing price, or 0 on an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Close
}
