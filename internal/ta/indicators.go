// Package ta holds the technical indicator math. Everything here is pure:
// the same input always yields the same output.
package ta

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// SMA averages the last period values, or all of them when fewer exist.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 || period <= 0 {
		return 0
	}
	return stat.Mean(tail(values, period), nil)
}

// EMASeries seeds with the first value and applies alpha = 2/(period+1).
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EMA returns the final value of EMASeries.
func EMA(values []float64, period int) float64 {
	series := EMASeries(values, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// RSI uses simple averages of gains and losses over the last period
// transitions. It is 50 when there are not enough closes and 100 when no
// transition in the window was a loss.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}
	window := tail(closes, period+1)
	var gainSum, lossSum float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	return rsiFromAvg(gainSum/float64(period), lossSum/float64(period))
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACDSeries returns the MACD line and its signal EMA.
func MACDSeries(values []float64, fast, slow, signal int) ([]float64, []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)
	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	return macdLine, EMASeries(macdLine, signal)
}

// Bollinger returns the upper, middle and lower band over the last period values.
func Bollinger(values []float64, period int, stdDevs float64) (upper, middle, lower float64) {
	if len(values) == 0 || period <= 0 {
		return 0, 0, 0
	}
	mean, std := MeanStd(tail(values, period))
	return mean + stdDevs*std, mean, mean - stdDevs*std
}

// StochasticK is %K over the last period bars. A flat range yields 50.
func StochasticK(closes, highs, lows []float64, period int) float64 {
	if len(closes) == 0 {
		return 50
	}
	lowest := minOf(tail(lows, period))
	highest := maxOf(tail(highs, period))
	if highest == lowest {
		return 50
	}
	return (closes[len(closes)-1] - lowest) / (highest - lowest) * 100
}

// PercentChanges converts a price series into consecutive percent moves.
func PercentChanges(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, (values[i]-values[i-1])/values[i-1]*100)
	}
	return out
}

func tail[T any](values []T, n int) []T {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, v := range values {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}
