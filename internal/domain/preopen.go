package domain

import "time"

// PreOpenEntry is one instrument row from the pre-open auction snapshot.
type PreOpenEntry struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	PrevClose float64 `json:"prev_close,omitempty"`
}

type Mover struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Sector    string  `json:"sector"`
	Influence float64 `json:"influence"`
}

type SectorImpact struct {
	Sector  string  `json:"sector"`
	Impact  float64 `json:"impact"`
	Gainers int     `json:"gainers"`
	Losers  int     `json:"losers"`
}

type ImpactAnalysis struct {
	ScanID       string         `json:"scan_id"`
	NetImpact    float64        `json:"net_impact"`
	Sentiment    string         `json:"sentiment"`
	Gap          string         `json:"gap"`
	Probability  float64        `json:"probability"`
	Sectors      []SectorImpact `json:"sectors"`
	TopSectors   []SectorImpact `json:"top_sectors"`
	WorstSectors []SectorImpact `json:"worst_sectors"`
	Gainers      []Mover        `json:"gainers"`
	Losers       []Mover        `json:"losers"`
	ScannedAt    time.Time      `json:"scanned_at"`
}
