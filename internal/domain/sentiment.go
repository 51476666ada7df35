package domain

import "time"

type SentimentLabel string

const (
	SentimentBullish SentimentLabel = "Bullish"
	SentimentBearish SentimentLabel = "Bearish"
	SentimentNeutral SentimentLabel = "Neutral"
)

type SentimentResult struct {
	Label           SentimentLabel `json:"label"`
	Confidence      float64        `json:"confidence"`
	BullishSignals  int            `json:"bullish_signals"`
	BearishSignals  int            `json:"bearish_signals"`
	Factors         []string       `json:"factors"`
	Recommendations []string       `json:"recommendations"`
	ComputedAt      time.Time      `json:"computed_at"`
}

type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
	ActionHold TradeAction = "HOLD"
)

// TradeSignal is one advisory entry or exit trigger.
type TradeSignal struct {
	Action     TradeAction `json:"action"`
	Reason     string      `json:"reason"`
	Confidence float64     `json:"confidence"`
	Target     float64     `json:"target"`
	StopLoss   float64     `json:"stop_loss"`
}

// EntryExitPlan aggregates trade signals into an overall advisory stance.
type EntryExitPlan struct {
	Action          TradeAction   `json:"action"`
	Strength        float64       `json:"strength"`
	Price           float64       `json:"price"`
	EntrySignals    []TradeSignal `json:"entry_signals"`
	ExitSignals     []TradeSignal `json:"exit_signals"`
	AvgTarget       float64       `json:"avg_target,omitempty"`
	AvgStopLoss     float64       `json:"avg_stop_loss,omitempty"`
	RiskRewardRatio float64       `json:"risk_reward_ratio,omitempty"`
}
