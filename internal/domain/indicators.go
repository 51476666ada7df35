package domain

import "encoding/json"

type IndicatorStatus string

const (
	IndicatorsSuccess      IndicatorStatus = "success"
	IndicatorsInsufficient IndicatorStatus = "insufficient_data"
)

const (
	TrendBullish      = "Bullish"
	TrendBearish      = "Bearish"
	TrendSideways     = "Sideways"
	TrendInsufficient = "insufficient data"
)

// Bollinger position zones.
const (
	BandAboveUpper = "above_upper"
	BandUpperZone  = "upper_zone"
	BandMiddle     = "middle_zone"
	BandLowerZone  = "lower_zone"
	BandBelowLower = "below_lower"
)

// MinIndicatorPoints is the history length required before any indicator is published.
const MinIndicatorPoints = 20

// IndicatorSet is recomputed from a history snapshot. Numeric fields are only
// meaningful when Status is IndicatorsSuccess.
type IndicatorSet struct {
	Status IndicatorStatus `json:"status"`
	Points int             `json:"points"`

	SMA        map[int]float64 `json:"sma"`
	EMAFast    float64         `json:"ema_12"`
	EMASlow    float64         `json:"ema_26"`
	MACD       float64         `json:"macd"`
	MACDSignal float64         `json:"macd_signal"`
	MACDHist   float64         `json:"macd_histogram"`
	RSI        float64         `json:"rsi"`
	Stochastic float64         `json:"stochastic_k"`

	BollingerUpper    float64 `json:"bb_upper"`
	BollingerMiddle   float64 `json:"bb_middle"`
	BollingerLower    float64 `json:"bb_lower"`
	BollingerPosition string  `json:"bb_position"`

	Support          float64 `json:"support"`
	Resistance       float64 `json:"resistance"`
	StrongSupport    float64 `json:"strong_support"`
	StrongResistance float64 `json:"strong_resistance"`

	ShortTrend  string `json:"short_trend"`
	MediumTrend string `json:"medium_trend"`
	LongTrend   string `json:"long_trend"`

	VolumeRatio float64 `json:"volume_ratio"`
	// VolumeEstimated is set when any volume behind VolumeRatio was synthesized.
	VolumeEstimated bool    `json:"volume_estimated"`
	Volatility      float64 `json:"volatility"`
}

// MarshalJSON writes only status and points for a set that is not ready, so
// zero placeholders are never published as values. A ready set writes every
// field, zeros included.
func (s IndicatorSet) MarshalJSON() ([]byte, error) {
	if !s.Ready() {
		return json.Marshal(struct {
			Status IndicatorStatus `json:"status"`
			Points int             `json:"points"`
		}{s.Status, s.Points})
	}
	type plain IndicatorSet
	return json.Marshal(plain(s))
}

func (s IndicatorSet) Ready() bool {
	return s.Status == IndicatorsSuccess
}

// InsufficientIndicators returns an empty set for a history of n points.
func InsufficientIndicators(n int) IndicatorSet {
	return IndicatorSet{Status: IndicatorsInsufficient, Points: n}
}
