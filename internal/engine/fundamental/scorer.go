// Package fundamental scores a ratio snapshot on four categories.
//
// Each category starts from a 50 baseline and moves by fixed steps as its
// ratios cross the configured bands. A ratio that is nil contributes
// nothing; a category whose ratios are all nil stays nil and is excluded
// from the composite. The composite is the plain mean of the categories
// that scored, and nil when none did. Scores never leave [0,100].
package fundamental

import (
	"fmt"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

// CategoryScores holds the per-category results. Nil means no ratio in that
// category was available.
type CategoryScores struct {
	Valuation     *float64 `json:"valuation,omitempty"`
	Health        *float64 `json:"health,omitempty"`
	Growth        *float64 `json:"growth,omitempty"`
	Profitability *float64 `json:"profitability,omitempty"`
}

// Result is the fundamental assessment for one snapshot.
type Result struct {
	Composite  *float64       `json:"composite,omitempty"`
	Categories CategoryScores `json:"categories"`
	Notes      []string       `json:"notes,omitempty"`
}

// Score evaluates the snapshot. A nil snapshot degrades to an empty result
// with a nil composite rather than failing.
func Score(snap *models.FundamentalSnapshot, cfg config.Fundamental) Result {
	var res Result
	if snap == nil {
		res.Notes = append(res.Notes, "no fundamental data available")
		return res
	}

	res.Categories.Valuation = valuation(snap, cfg, &res.Notes)
	res.Categories.Health = health(snap, cfg, &res.Notes)
	res.Categories.Growth = growth(snap, cfg, &res.Notes)
	res.Categories.Profitability = profitability(snap, cfg, &res.Notes)

	var sum float64
	var n int
	for _, c := range []*float64{
		res.Categories.Valuation,
		res.Categories.Health,
		res.Categories.Growth,
		res.Categories.Profitability,
	} {
		if c != nil {
			sum += *c
			n++
		}
	}
	if n > 0 {
		composite := sum / float64(n)
		res.Composite = &composite
	} else {
		res.Notes = append(res.Notes, "no fundamental data available")
	}
	return res
}

// category accumulates band adjustments on the 50 baseline. used tracks
// whether any ratio contributed; an untouched category scores nil.
type category struct {
	score float64
	used  bool
}

func (c *category) adjust(delta float64) {
	c.score += delta
	c.used = true
}

func (c *category) result() *float64 {
	if !c.used {
		return nil
	}
	s := c.score
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return &s
}

func valuation(snap *models.FundamentalSnapshot, cfg config.Fundamental, notes *[]string) *float64 {
	c := category{score: 50}
	if pe := snap.PERatio; pe != nil {
		mid := (cfg.PELow + cfg.PEHigh) / 2
		switch {
		case *pe <= 0:
			c.adjust(-10)
			*notes = append(*notes, fmt.Sprintf("negative P/E %.1f", *pe))
		case *pe < cfg.PELow:
			c.adjust(15)
		case *pe < mid:
			c.adjust(5)
		case *pe > cfg.PEHigh:
			c.adjust(-15)
			*notes = append(*notes, fmt.Sprintf("P/E %.1f above %.0f", *pe, cfg.PEHigh))
		default:
			c.adjust(0)
		}
	}
	if pb := snap.PBRatio; pb != nil {
		switch {
		case *pb < cfg.PBLow:
			c.adjust(10)
		case *pb > cfg.PBHigh:
			c.adjust(-10)
		default:
			c.adjust(0)
		}
	}
	if ev := snap.EVEBITDA; ev != nil {
		switch {
		case *ev < cfg.EVEBITDALow:
			c.adjust(10)
		case *ev > cfg.EVEBITDAHigh:
			c.adjust(-10)
		default:
			c.adjust(0)
		}
	}
	return c.result()
}

func health(snap *models.FundamentalSnapshot, cfg config.Fundamental, notes *[]string) *float64 {
	c := category{score: 50}
	if cr := snap.CurrentRatio; cr != nil {
		switch {
		case *cr > cfg.CurrentStrong:
			c.adjust(15)
		case *cr >= cfg.CurrentWeak:
			c.adjust(5)
		default:
			c.adjust(-15)
			*notes = append(*notes, fmt.Sprintf("current ratio %.2f below %.1f", *cr, cfg.CurrentWeak))
		}
	}
	if qr := snap.QuickRatio; qr != nil {
		switch {
		case *qr > cfg.QuickGood:
			c.adjust(10)
		case *qr < cfg.QuickPoor:
			c.adjust(-10)
		default:
			c.adjust(0)
		}
	}
	if de := snap.DebtToEquity; de != nil {
		switch {
		case *de < cfg.DebtEquityLow:
			c.adjust(15)
		case *de > cfg.DebtEquityHigh:
			c.adjust(-15)
			*notes = append(*notes, fmt.Sprintf("debt/equity %.2f above %.1f", *de, cfg.DebtEquityHigh))
		default:
			c.adjust(0)
		}
	}
	return c.result()
}

func growth(snap *models.FundamentalSnapshot, cfg config.Fundamental, _ *[]string) *float64 {
	c := category{score: 50}
	if rg := snap.RevenueGrowth; rg != nil {
		switch {
		case *rg > cfg.GrowthStrong:
			c.adjust(20)
		case *rg > cfg.GrowthModest:
			c.adjust(10)
		case *rg < 0:
			c.adjust(-15)
		default:
			c.adjust(0)
		}
	}
	if eg := snap.EarningsGrowth; eg != nil {
		switch {
		case *eg > cfg.EarningsStrong:
			c.adjust(20)
		case *eg > cfg.EarningsModest:
			c.adjust(10)
		case *eg < 0:
			c.adjust(-15)
		default:
			c.adjust(0)
		}
	}
	return c.result()
}

func profitability(snap *models.FundamentalSnapshot, cfg config.Fundamental, _ *[]string) *float64 {
	c := category{score: 50}
	if roe := snap.ROE; roe != nil {
		switch {
		case *roe > cfg.ROEStrong:
			c.adjust(15)
		case *roe > cfg.ROEModest:
			c.adjust(8)
		case *roe < cfg.ROEWeak:
			c.adjust(-10)
		default:
			c.adjust(0)
		}
	}
	if roa := snap.ROA; roa != nil {
		switch {
		case *roa > cfg.ROAStrong:
			c.adjust(10)
		case *roa > cfg.ROAModest:
			c.adjust(5)
		case *roa < 0:
			c.adjust(-10)
		default:
			c.adjust(0)
		}
	}
	if pm := snap.ProfitMargin; pm != nil {
		switch {
		case *pm > cfg.MarginStrong:
			c.adjust(15)
		case *pm > cfg.MarginModest:
			c.adjust(7)
		case *pm < 0:
			c.adjust(-15)
		default:
			c.adjust(0)
		}
	}
	return c.result()
}
