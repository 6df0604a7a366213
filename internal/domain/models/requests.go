package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Days    int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

type IndicatorsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
}

type PredictionsRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Days    int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
	Horizon int    `query:"horizon" json:"horizon" default:"7" validate:"oneof=1 3 7 14 30"`
}
