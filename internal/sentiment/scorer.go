// Package sentiment turns a quote and its indicator set into a directional
// verdict and an advisory entry/exit plan.
package sentiment

import (
	"fmt"
	"math"
	"time"

	"index-pulse/internal/domain"
)

const (
	bullishFraction = 0.70
	bearishFraction = 0.30
	maxConfidence   = 95.0
	highVolumeRatio = 1.5
	lowVolumeRatio  = 0.7
	overbought      = 70.0
	oversold        = 30.0
)

var recommendations = map[domain.SentimentLabel][]string{
	domain.SentimentBullish: {
		"Consider long positions on dips towards support",
		"Trail stop-losses below the immediate support level",
		"Watch for RSI moving into overbought territory",
	},
	domain.SentimentBearish: {
		"Avoid fresh long positions until momentum turns",
		"Consider hedging or reducing exposure near resistance",
		"Watch for a bounce near strong support",
	},
	domain.SentimentNeutral: {
		"Wait for a clear breakout above resistance or below support",
		"Range-trading between support and resistance is possible",
		"Keep position sizes small until direction is confirmed",
	},
}

// signal is one checklist item. vote is +1 bullish, -1 bearish, 0 neutral.
type signal struct {
	vote   int
	factor string
}

// Scorer evaluates a fixed checklist of signals.
type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Score returns nil when indicators are not ready; absence is a normal state
// during warm-up, not an error.
func (s *Scorer) Score(q domain.Quote, ind domain.IndicatorSet) *domain.SentimentResult {
	if !ind.Ready() {
		return nil
	}

	checklist := []signal{
		priceVsSMA(q.Price, ind.SMA[20]),
		rsiZone(ind.RSI),
		macdSign(ind.MACD),
		volumeExtremity(ind.VolumeRatio, ind.VolumeEstimated),
		shortTrend(ind.ShortTrend),
	}

	res := &domain.SentimentResult{
		Factors:    make([]string, 0, len(checklist)),
		ComputedAt: s.now(),
	}
	for _, sig := range checklist {
		switch {
		case sig.vote > 0:
			res.BullishSignals++
		case sig.vote < 0:
			res.BearishSignals++
		}
		res.Factors = append(res.Factors, sig.factor)
	}

	res.Label, res.Confidence = Verdict(res.BullishSignals, res.BearishSignals)
	res.Recommendations = append([]string(nil), recommendations[res.Label]...)
	return res
}

// Verdict applies the 70/30 fraction rule. With no directional votes the
// fraction is treated as 0.5.
func Verdict(bullish, bearish int) (domain.SentimentLabel, float64) {
	f := 0.5
	if total := bullish + bearish; total > 0 {
		f = float64(bullish) / float64(total)
	}

	var label domain.SentimentLabel
	var confidence float64
	switch {
	case f >= bullishFraction:
		label, confidence = domain.SentimentBullish, f*100
	case f <= bearishFraction:
		label, confidence = domain.SentimentBearish, (1-f)*100
	default:
		label, confidence = domain.SentimentNeutral, math.Max(f, 1-f)*100
	}
	return label, math.Min(confidence, maxConfidence)
}

func priceVsSMA(price, sma20 float64) signal {
	switch {
	case price > sma20:
		return signal{1, fmt.Sprintf("Price %.2f above SMA20 %.2f", price, sma20)}
	case price < sma20:
		return signal{-1, fmt.Sprintf("Price %.2f below SMA20 %.2f", price, sma20)}
	default:
		return signal{0, fmt.Sprintf("Price %.2f at SMA20", price)}
	}
}

func rsiZone(rsi float64) signal {
	switch {
	case rsi > overbought:
		return signal{-1, fmt.Sprintf("RSI %.1f overbought", rsi)}
	case rsi < oversold:
		return signal{1, fmt.Sprintf("RSI %.1f oversold", rsi)}
	default:
		return signal{0, fmt.Sprintf("RSI %.1f neutral", rsi)}
	}
}

func macdSign(macd float64) signal {
	switch {
	case macd > 0:
		return signal{1, fmt.Sprintf("MACD %.2f positive", macd)}
	case macd < 0:
		return signal{-1, fmt.Sprintf("MACD %.2f negative", macd)}
	default:
		return signal{0, "MACD flat"}
	}
}

func volumeExtremity(ratio float64, estimated bool) signal {
	var sig signal
	switch {
	case ratio > highVolumeRatio:
		sig = signal{1, fmt.Sprintf("Volume %.2fx average, strong participation", ratio)}
	case ratio < lowVolumeRatio:
		sig = signal{-1, fmt.Sprintf("Volume %.2fx average, weak participation", ratio)}
	default:
		sig = signal{0, fmt.Sprintf("Volume %.2fx average", ratio)}
	}
	if estimated {
		sig.factor += " (time-of-day volume estimate)"
	}
	return sig
}

func shortTrend(label string) signal {
	switch label {
	case domain.TrendBullish:
		return signal{1, "Short-term trend bullish"}
	case domain.TrendBearish:
		return signal{-1, "Short-term trend bearish"}
	default:
		return signal{0, "Short-term trend " + label}
	}
}
