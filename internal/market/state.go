// Package market holds the application state shared by the schedulers and
// the request-serving adapters.
package market

import (
	"sync/atomic"
	"time"

	"index-pulse/internal/domain"
	"index-pulse/internal/history"

	uatomic "go.uber.org/atomic"
)

// Analysis bundles the results derived from one history snapshot.
type Analysis struct {
	Indicators domain.IndicatorSet
	Sentiment  *domain.SentimentResult
	Plan       *domain.EntryExitPlan
}

// State is passed explicitly to every component that reads or writes
// shared results. Each result group is an immutable value swapped in whole,
// so readers never observe a half-updated object.
type State struct {
	History *history.Buffer
	Hours   Hours

	quote    atomic.Pointer[domain.Quote]
	analysis atomic.Pointer[Analysis]
	preopen  atomic.Pointer[domain.PreOpenView]

	lastFetch uatomic.Int64
	lastScan  uatomic.Int64
	fetches   uatomic.Int64
	failures  uatomic.Int64
}

func NewState(buf *history.Buffer, hours Hours) *State {
	s := &State{History: buf, Hours: hours}
	s.analysis.Store(&Analysis{Indicators: domain.InsufficientIndicators(0)})
	return s
}

func (s *State) SetQuote(q domain.Quote) {
	s.quote.Store(&q)
	s.lastFetch.Store(q.CapturedAt.UnixNano())
	s.fetches.Inc()
}

// Quote returns the latest quote, or nil before the first successful fetch.
func (s *State) Quote() *domain.Quote {
	return s.quote.Load()
}

func (s *State) RecordFailure() {
	s.failures.Inc()
}

func (s *State) SetAnalysis(a Analysis) {
	s.analysis.Store(&a)
}

func (s *State) Analysis() Analysis {
	return *s.analysis.Load()
}

func (s *State) SetPreOpen(v domain.PreOpenView) {
	s.preopen.Store(&v)
	if v.Analysis != nil {
		s.lastScan.Store(v.Analysis.ScannedAt.UnixNano())
	}
}

// PreOpen returns the latest scan result, empty before the first scan.
func (s *State) PreOpen() domain.PreOpenView {
	if v := s.preopen.Load(); v != nil {
		return *v
	}
	return domain.PreOpenView{}
}

func (s *State) LastFetch() time.Time { return unixOrZero(s.lastFetch.Load()) }
func (s *State) LastScan() time.Time  { return unixOrZero(s.lastScan.Load()) }
func (s *State) Fetches() int64       { return s.fetches.Load() }
func (s *State) Failures() int64      { return s.failures.Load() }

func unixOrZero(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
