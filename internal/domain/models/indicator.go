package models

import "time"

// IndicatorSet holds technical indicator values computed for the last point
// of a price series. A nil field means the lookback window was not satisfied
// yet; consumers must not treat nil as zero.
type IndicatorSet struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`

	SMA20  *float64 `json:"sma_20,omitempty"`
	SMA50  *float64 `json:"sma_50,omitempty"`
	SMA200 *float64 `json:"sma_200,omitempty"`
	EMA12  *float64 `json:"ema_12,omitempty"`
	EMA26  *float64 `json:"ema_26,omitempty"`

	MACD          *float64 `json:"macd,omitempty"`
	MACDSignal    *float64 `json:"macd_signal,omitempty"`
	MACDHistogram *float64 `json:"macd_histogram,omitempty"`

	RSI         *float64 `json:"rsi,omitempty"`
	StochasticK *float64 `json:"stochastic_k,omitempty"`
	StochasticD *float64 `json:"stochastic_d,omitempty"`
	WilliamsR   *float64 `json:"williams_r,omitempty"`

	BollingerUpper  *float64 `json:"bollinger_upper,omitempty"`
	BollingerMiddle *float64 `json:"bollinger_middle,omitempty"`
	BollingerLower  *float64 `json:"bollinger_lower,omitempty"`
	ATR             *float64 `json:"atr,omitempty"`

	OBV       *float64 `json:"obv,omitempty"`
	VolumeSMA *float64 `json:"volume_sma,omitempty"`

	SupportLevel    *float64 `json:"support_level,omitempty"`
	ResistanceLevel *float64 `json:"resistance_level,omitempty"`
}
