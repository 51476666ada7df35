// Package preopen filters significant pre-open movers and predicts the
// opening gap from their influence-weighted moves.
package preopen

import (
	"math"
	"sort"
	"time"

	"index-pulse/internal/domain"

	"github.com/google/uuid"
)

// DefaultThreshold is the minimum absolute percent change for a mover.
const DefaultThreshold = 2.0

// Gap prediction constants.
const (
	strongImpact = 1.0
	mildImpact   = 0.3
	flatChance   = 60.0
)

type Analyzer struct {
	table     InfluenceTable
	threshold float64
	now       func() time.Time
	newID     func() string
}

func NewAnalyzer(table InfluenceTable, threshold float64) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Analyzer{
		table:     table,
		threshold: threshold,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Filter keeps entries moving at least the threshold with a positive price.
// Gainers are sorted by change descending, losers ascending.
func (a *Analyzer) Filter(snapshot []domain.PreOpenEntry) (gainers, losers []domain.Mover) {
	for _, e := range snapshot {
		if e.Price <= 0 || math.Abs(e.ChangePct) < a.threshold {
			continue
		}
		w := a.table.Lookup(e.Symbol)
		m := domain.Mover{
			Symbol:    e.Symbol,
			Price:     e.Price,
			ChangePct: e.ChangePct,
			Sector:    w.Sector,
			Influence: w.Influence,
		}
		if e.ChangePct > 0 {
			gainers = append(gainers, m)
		} else {
			losers = append(losers, m)
		}
	}
	sort.SliceStable(gainers, func(i, j int) bool { return gainers[i].ChangePct > gainers[j].ChangePct })
	sort.SliceStable(losers, func(i, j int) bool { return losers[i].ChangePct < losers[j].ChangePct })
	return gainers, losers
}

// AnalyzeImpact weighs movers by influence and predicts the opening gap.
func (a *Analyzer) AnalyzeImpact(gainers, losers []domain.Mover) domain.ImpactAnalysis {
	sectors := map[string]*domain.SectorImpact{}
	sector := func(name string) *domain.SectorImpact {
		s, ok := sectors[name]
		if !ok {
			s = &domain.SectorImpact{Sector: name}
			sectors[name] = s
		}
		return s
	}

	var net float64
	for _, g := range gainers {
		impact := g.Influence * g.ChangePct / 100
		net += impact
		s := sector(g.Sector)
		s.Impact += impact
		s.Gainers++
	}
	for _, l := range losers {
		impact := l.Influence * math.Abs(l.ChangePct) / 100
		net -= impact
		s := sector(l.Sector)
		s.Impact -= impact
		s.Losers++
	}

	breakdown := make([]domain.SectorImpact, 0, len(sectors))
	for _, s := range sectors {
		breakdown = append(breakdown, *s)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Impact == breakdown[j].Impact {
			return breakdown[i].Sector < breakdown[j].Sector
		}
		return breakdown[i].Impact > breakdown[j].Impact
	})
	worst := make([]domain.SectorImpact, len(breakdown))
	for i := range breakdown {
		worst[i] = breakdown[len(breakdown)-1-i]
	}

	sentiment, gap, probability := Predict(net)
	return domain.ImpactAnalysis{
		ScanID:       a.newID(),
		NetImpact:    net,
		Sentiment:    sentiment,
		Gap:          gap,
		Probability:  probability,
		Sectors:      breakdown,
		TopSectors:   breakdown,
		WorstSectors: worst,
		Gainers:      gainers,
		Losers:       losers,
		ScannedAt:    a.now(),
	}
}

// Scan runs Filter then AnalyzeImpact over one snapshot.
func (a *Analyzer) Scan(snapshot []domain.PreOpenEntry) domain.ImpactAnalysis {
	gainers, losers := a.Filter(snapshot)
	return a.AnalyzeImpact(gainers, losers)
}

// Predict maps a net impact score to sentiment, gap category and probability.
func Predict(impact float64) (sentiment, gap string, probability float64) {
	abs := math.Abs(impact)
	switch {
	case impact > strongImpact:
		return "Strong Positive", "Gap Up", math.Min(85, 60+abs*10)
	case impact > mildImpact:
		return "Mild Positive", "Small Gap Up", math.Min(75, 55+abs*10)
	case impact < -strongImpact:
		return "Strong Negative", "Gap Down", math.Min(85, 60+abs*10)
	case impact < -mildImpact:
		return "Mild Negative", "Small Gap Down", math.Min(75, 55+abs*10)
	default:
		return "Neutral", "Flat Opening", flatChance
	}
}
