package models

import "time"

// FundamentalSnapshot carries the ratios and statement figures for one fiscal
// period. Every ratio is optional; limited data tiers often miss most of them.
// At most one snapshot exists per (symbol, fiscal_year, fiscal_quarter).
type FundamentalSnapshot struct {
	Symbol        string     `json:"symbol"`
	FiscalYear    int        `json:"fiscal_year"`
	FiscalQuarter int        `json:"fiscal_quarter"`
	ReportDate    *time.Time `json:"report_date,omitempty"`

	MarketCap *float64 `json:"market_cap,omitempty"`

	PERatio        *float64 `json:"pe_ratio,omitempty"`
	PBRatio        *float64 `json:"pb_ratio,omitempty"`
	EVEBITDA       *float64 `json:"ev_ebitda,omitempty"`
	CurrentRatio   *float64 `json:"current_ratio,omitempty"`
	QuickRatio     *float64 `json:"quick_ratio,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth *float64 `json:"earnings_growth,omitempty"`
	ROE            *float64 `json:"roe,omitempty"`
	ROA            *float64 `json:"roa,omitempty"`
	ProfitMargin   *float64 `json:"profit_margin,omitempty"`

	Revenue     *float64 `json:"revenue,omitempty"`
	Earnings    *float64 `json:"earnings,omitempty"`
	Assets      *float64 `json:"assets,omitempty"`
	Liabilities *float64 `json:"liabilities,omitempty"`
	Equity      *float64 `json:"equity,omitempty"`
	Cash        *float64 `json:"cash,omitempty"`
	Debt        *float64 `json:"debt,omitempty"`
}
