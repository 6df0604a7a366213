// Package indicators computes technical indicators over daily OHLCV series.
//
// Every function returns a slice aligned index-for-index with its input;
// positions where the indicator is undefined (not enough lookback, or a
// degenerate window such as a flat high/low range) hold NaN. The Compute
// entry point converts the final position of each series into the nullable
// snapshot the rest of the engine consumes.
package indicators

import (
	"math"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

// SMA returns the simple moving average with the given period.
func SMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average with smoothing 2/(period+1).
// The first defined value is the SMA of the first period values; recursion
// proceeds from there. Leading NaNs in the input (e.g. a MACD line) are
// skipped, so the seed window starts at the first defined input.
func EMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 {
		return out
	}
	first := firstValid(values)
	if first < 0 || len(values)-first < period {
		return out
	}

	var seed float64
	for i := first; i < first+period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	alpha := 2.0 / float64(period+1)
	out[first+period-1] = seed
	prev := seed
	for i := first + period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// MACD returns the MACD line (fast EMA minus slow EMA), its signal line
// (EMA of the MACD line), and the histogram (line minus signal).
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	line = nans(len(closes))
	for i := range closes {
		if !math.IsNaN(emaFast[i]) && !math.IsNaN(emaSlow[i]) {
			line[i] = emaFast[i] - emaSlow[i]
		}
	}

	sig = EMA(line, signal)

	hist = nans(len(closes))
	for i := range closes {
		if !math.IsNaN(line[i]) && !math.IsNaN(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}

// RSI returns the relative strength index with Wilder smoothing. The seed is
// the arithmetic mean of gains/losses over the first period changes; later
// values use avg = (prev*(period-1) + current) / period. A window with zero
// average loss reads 100.
func RSI(closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Stochastic returns %K (raw stochastic over the lookback) and %D (SMA of %K
// over smooth). A flat window where the highest high equals the lowest low
// leaves %K undefined at that position.
func Stochastic(highs, lows, closes []float64, period, smooth int) (k, d []float64) {
	k = nans(len(closes))
	if period <= 0 || len(closes) < period {
		return k, nans(len(closes))
	}
	for i := period - 1; i < len(closes); i++ {
		hh, ll := windowRange(highs, lows, i, period)
		if hh == ll {
			continue
		}
		k[i] = 100 * (closes[i] - ll) / (hh - ll)
	}
	d = smaSkipNaN(k, smooth)
	return k, d
}

// WilliamsR returns Williams %R over the lookback, in [-100, 0].
func WilliamsR(highs, lows, closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}
	for i := period - 1; i < len(closes); i++ {
		hh, ll := windowRange(highs, lows, i, period)
		if hh == ll {
			continue
		}
		out[i] = -100 * (hh - closes[i]) / (hh - ll)
	}
	return out
}

// Bollinger returns upper, middle, and lower bands: middle is the SMA,
// and the bands sit k sample standard deviations away.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower []float64) {
	middle = SMA(closes, period)
	upper = nans(len(closes))
	lower = nans(len(closes))
	if period <= 1 || len(closes) < period {
		return upper, middle, lower
	}
	for i := period - 1; i < len(closes); i++ {
		mean := middle[i]
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period-1))
		upper[i] = mean + k*sd
		lower[i] = mean - k*sd
	}
	return upper, middle, lower
}

// ATR returns the Wilder-smoothed average true range. True range at i>0 is
// max(high-low, |high-prevClose|, |low-prevClose|); at i=0 it is high-low.
func ATR(highs, lows, closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	tr := make([]float64, len(closes))
	tr[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += tr[i]
	}
	seed /= float64(period)
	out[period-1] = seed
	prev := seed
	for i := period; i < len(closes); i++ {
		prev = (prev*float64(period-1) + tr[i]) / float64(period)
		out[i] = prev
	}
	return out
}

// OBV returns on-balance volume starting from zero: volume is added on an
// up close, subtracted on a down close, and ignored on an unchanged close.
func OBV(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// SupportResistance returns the rolling lowest low and highest high over the
// window, the naive support/resistance estimate used by the scorer summaries.
func SupportResistance(highs, lows []float64, window int) (support, resistance []float64) {
	support = nans(len(lows))
	resistance = nans(len(highs))
	if window <= 0 || len(lows) < window {
		return support, resistance
	}
	for i := window - 1; i < len(lows); i++ {
		hh, ll := windowRange(highs, lows, i, window)
		resistance[i] = hh
		support[i] = ll
	}
	return support, resistance
}

// Compute evaluates the whole indicator suite and snapshots the latest
// defined value of each series. The series must already be validated and
// sorted; any indicator without enough history comes back nil rather than
// failing the batch.
func Compute(series *models.PriceSeries, cfg config.Indicators) *models.IndicatorSet {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	set := &models.IndicatorSet{Symbol: series.Symbol}
	if n := series.Len(); n > 0 {
		set.Timestamp = series.Points[n-1].Timestamp
	}

	set.SMA20 = last(SMA(closes, cfg.SMAShort))
	set.SMA50 = last(SMA(closes, cfg.SMAMedium))
	set.SMA200 = last(SMA(closes, cfg.SMALong))
	set.EMA12 = last(EMA(closes, cfg.EMAFast))
	set.EMA26 = last(EMA(closes, cfg.EMASlow))

	line, sig, hist := MACD(closes, cfg.EMAFast, cfg.EMASlow, cfg.MACDSignal)
	set.MACD = last(line)
	set.MACDSignal = last(sig)
	set.MACDHistogram = last(hist)

	set.RSI = last(RSI(closes, cfg.RSIPeriod))

	k, d := Stochastic(highs, lows, closes, cfg.StochasticPeriod, cfg.StochasticSmooth)
	set.StochasticK = last(k)
	set.StochasticD = last(d)

	set.WilliamsR = last(WilliamsR(highs, lows, closes, cfg.WilliamsPeriod))

	upper, middle, lower := Bollinger(closes, cfg.BollingerPeriod, cfg.BollingerStdDev)
	set.BollingerUpper = last(upper)
	set.BollingerMiddle = last(middle)
	set.BollingerLower = last(lower)

	set.ATR = last(ATR(highs, lows, closes, cfg.ATRPeriod))

	if len(closes) > 0 {
		set.OBV = last(OBV(closes, volumes))
	}
	set.VolumeSMA = last(SMA(volumes, cfg.VolumeSMAPeriod))

	support, resistance := SupportResistance(highs, lows, cfg.RangeWindow)
	set.SupportLevel = last(support)
	set.ResistanceLevel = last(resistance)

	return set
}

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

func windowRange(highs, lows []float64, end, period int) (hh, ll float64) {
	hh = math.Inf(-1)
	ll = math.Inf(1)
	for j := end - period + 1; j <= end; j++ {
		if highs[j] > hh {
			hh = highs[j]
		}
		if lows[j] < ll {
			ll = lows[j]
		}
	}
	return hh, ll
}

// smaSkipNaN averages the trailing window only when every member is defined.
func smaSkipNaN(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		var sum float64
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}

func last(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
