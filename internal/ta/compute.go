package ta

import (
	"index-pulse/internal/domain"

	"gonum.org/v1/gonum/stat"
)

var smaWindows = []int{5, 10, 20, 50}

const (
	emaFast       = 12
	emaSlow       = 26
	macdSignal    = 9
	rsiPeriod     = 14
	stochPeriod   = 14
	bandPeriod    = 20
	bandWidth     = 2.0
	levelWindow   = 10
	strongWindow  = 30
	volumeWindow  = 10
	volatilityLen = 20
)

// Compute derives the full indicator set from a history snapshot ordered
// oldest first. Fewer than domain.MinIndicatorPoints quotes yield an
// insufficient_data set with nothing numeric filled in.
func Compute(history []domain.Quote) domain.IndicatorSet {
	n := len(history)
	if n < domain.MinIndicatorPoints {
		return domain.InsufficientIndicators(n)
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, q := range history {
		closes[i] = q.Price
		highs[i] = q.High
		lows[i] = q.Low
		volumes[i] = q.Volume
	}
	price := closes[n-1]

	out := domain.IndicatorSet{
		Status: domain.IndicatorsSuccess,
		Points: n,
		SMA:    make(map[int]float64, len(smaWindows)),
	}
	for _, k := range smaWindows {
		out.SMA[k] = SMA(closes, k)
	}

	macdLine, signalLine := MACDSeries(closes, emaFast, emaSlow, macdSignal)
	out.EMAFast = EMA(closes, emaFast)
	out.EMASlow = EMA(closes, emaSlow)
	out.MACD = macdLine[n-1]
	out.MACDSignal = signalLine[n-1]
	out.MACDHist = out.MACD - out.MACDSignal

	out.RSI = RSI(closes, rsiPeriod)
	out.Stochastic = StochasticK(closes, highs, lows, stochPeriod)

	out.BollingerUpper, out.BollingerMiddle, out.BollingerLower = Bollinger(closes, bandPeriod, bandWidth)
	out.BollingerPosition = BandPosition(price, out.BollingerUpper, out.BollingerLower)

	out.Support = minOf(tail(lows, levelWindow))
	out.Resistance = maxOf(tail(highs, levelWindow))
	if n >= strongWindow {
		out.StrongSupport = minOf(tail(lows, strongWindow))
		out.StrongResistance = maxOf(tail(highs, strongWindow))
	} else {
		out.StrongSupport = out.Support
		out.StrongResistance = out.Resistance
	}

	out.ShortTrend = Trend(closes, 5)
	out.MediumTrend = Trend(closes, 10)
	out.LongTrend = Trend(closes, 20)

	out.VolumeRatio = VolumeRatio(volumes, volumeWindow)
	for _, q := range tail(history, volumeWindow) {
		if q.EstimatedVolume {
			out.VolumeEstimated = true
			break
		}
	}
	out.Volatility = Volatility(closes, volatilityLen)
	return out
}

// Trend compares the mean of the latest k closes with the mean of the k
// closes before them.
func Trend(closes []float64, k int) string {
	if k <= 0 || len(closes) < 2*k {
		return domain.TrendInsufficient
	}
	recent := stat.Mean(closes[len(closes)-k:], nil)
	prior := stat.Mean(closes[len(closes)-2*k:len(closes)-k], nil)
	switch {
	case recent > prior:
		return domain.TrendBullish
	case recent < prior:
		return domain.TrendBearish
	default:
		return domain.TrendSideways
	}
}

// VolumeRatio divides the latest volume by the mean of the last window volumes.
// A zero mean gives a neutral ratio of 1.
func VolumeRatio(volumes []float64, window int) float64 {
	if len(volumes) == 0 {
		return 0
	}
	avg := stat.Mean(tail(volumes, window), nil)
	if avg == 0 {
		return 1
	}
	return volumes[len(volumes)-1] / avg
}

// Volatility is the population stddev of percent changes across the last points closes.
func Volatility(closes []float64, points int) float64 {
	changes := PercentChanges(tail(closes, points))
	if len(changes) == 0 {
		return 0
	}
	_, std := MeanStd(changes)
	return std
}

// BandPosition places price within the Bollinger envelope.
func BandPosition(price, upper, lower float64) string {
	switch {
	case price > upper:
		return domain.BandAboveUpper
	case price < lower:
		return domain.BandBelowLower
	}
	width := upper - lower
	if width <= 0 {
		return domain.BandMiddle
	}
	pos := (price - lower) / width
	switch {
	case pos > 0.7:
		return domain.BandUpperZone
	case pos < 0.3:
		return domain.BandLowerZone
	default:
		return domain.BandMiddle
	}
}
