package domain

import (
	"fmt"
	"time"
)

type QuoteStatus string

const (
	QuoteValid   QuoteStatus = "valid"
	QuoteInvalid QuoteStatus = "invalid"
)

// Quote is one normalized point-in-time snapshot of the tracked index.
// EstimatedOHLC is set when open/high/low were synthesized from price and
// EstimatedVolume when volume came from the time-of-day table; upstream
// values are never flagged. ChangeUnresolved means the upstream gave neither
// the move nor a previous close, so Change and ChangePct carry no data.
type Quote struct {
	Symbol     string      `json:"symbol"`
	Price      float64     `json:"price"`
	Change     float64     `json:"change"`
	ChangePct  float64     `json:"change_pct"`
	Open       float64     `json:"open"`
	High       float64     `json:"high"`
	Low        float64     `json:"low"`
	PrevClose  float64     `json:"prev_close,omitempty"`
	Volume     float64     `json:"volume"`
	Source     string      `json:"source"`
	CapturedAt time.Time   `json:"captured_at"`
	Status     QuoteStatus `json:"status"`

	EstimatedOHLC    bool `json:"estimated_ohlc"`
	EstimatedVolume  bool `json:"estimated_volume"`
	ChangeUnresolved bool `json:"change_unresolved"`
}

// HasOHLC reports whether the upstream supplied a usable open/high/low triple.
func (q Quote) HasOHLC() bool {
	return q.Open > 0 && q.High > 0 && q.Low > 0
}

// Validate checks the price and range invariants of a valid quote.
func (q Quote) Validate() error {
	if q.Price <= 0 {
		return fmt.Errorf("%w: non-positive price %.4f", ErrMalformedResponse, q.Price)
	}
	if q.Low <= 0 {
		return fmt.Errorf("%w: non-positive low %.4f", ErrMalformedResponse, q.Low)
	}
	top := q.Open
	if q.Low > top {
		top = q.Low
	}
	if q.Price > top {
		top = q.Price
	}
	if q.High < top {
		return fmt.Errorf("%w: high %.4f below open/low/price", ErrMalformedResponse, q.High)
	}
	return nil
}

// ReliabilityLabel is what downstream reporting shows next to OHLC values.
// Volume estimation does not affect it.
func (q Quote) ReliabilityLabel() string {
	if q.EstimatedOHLC {
		return "estimated"
	}
	return "live"
}
