package domain

import "time"

type MarketStatus string

const (
	MarketPreOpen MarketStatus = "pre_open"
	MarketOpen    MarketStatus = "open"
	MarketClosed  MarketStatus = "closed"
	MarketWeekend MarketStatus = "weekend"
)

// MarketView is what the command layer receives for "latest market view".
// Indicators is never nil; Sentiment and Plan are nil until indicators are ready.
type MarketView struct {
	Quote      *Quote           `json:"quote"`
	Indicators IndicatorSet     `json:"indicators"`
	Sentiment  *SentimentResult `json:"sentiment,omitempty"`
	Plan       *EntryExitPlan   `json:"plan,omitempty"`
	Status     MarketStatus     `json:"market_status"`
}

// PreOpenView carries the latest scan; Analysis is nil before the first scan.
type PreOpenView struct {
	Gainers  []Mover         `json:"gainers"`
	Losers   []Mover         `json:"losers"`
	Analysis *ImpactAnalysis `json:"analysis,omitempty"`
}

type ServiceStatus struct {
	MarketStatus    MarketStatus `json:"market_status"`
	HistorySize     int          `json:"price_history_size"`
	HistoryCapacity int          `json:"price_history_capacity"`
	CacheSize       int          `json:"cache_size"`
	LastFetchAt     time.Time    `json:"last_fetch_at,omitempty"`
	LastScanAt      time.Time    `json:"last_scan_at,omitempty"`
	Fetches         int64        `json:"fetches"`
	Failures        int64        `json:"failures"`
}
