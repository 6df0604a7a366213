package models

// Bar is the wire form of one OHLCV bar on the ingestion path
// (market-data stream -> Kafka -> ClickHouse). Timestamp is unix seconds.
type Bar struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}
