package market

import (
	"fmt"
	"strings"
	"time"

	"index-pulse/internal/domain"
)

// Hours describes the trading calendar in the exchange's local time.
// Times are minutes after local midnight.
type Hours struct {
	Location     *time.Location
	Open         int
	Close        int
	PreOpenStart int
	PreOpenEnd   int
	Days         map[time.Weekday]bool
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDays converts names such as "Mon" or "friday" into a weekday mask.
func ParseDays(names []string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if len(key) > 3 {
			key = key[:3]
		}
		d, ok := weekdays[key]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", n)
		}
		days[d] = true
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no trading days configured")
	}
	return days, nil
}

// LoadLocation falls back to a fixed IST offset when tzdata is unavailable.
func LoadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+30*60)
}

func (h Hours) local(t time.Time) (time.Time, int) {
	lt := t.In(h.Location)
	return lt, lt.Hour()*60 + lt.Minute()
}

func (h Hours) IsTradingDay(t time.Time) bool {
	lt, _ := h.local(t)
	return h.Days[lt.Weekday()]
}

// InSession reports whether t falls inside regular market hours.
func (h Hours) InSession(t time.Time) bool {
	_, m := h.local(t)
	return h.IsTradingDay(t) && m >= h.Open && m < h.Close
}

// InPreOpen reports whether t falls inside the daily pre-open window.
func (h Hours) InPreOpen(t time.Time) bool {
	_, m := h.local(t)
	return h.IsTradingDay(t) && m >= h.PreOpenStart && m < h.PreOpenEnd
}

func (h Hours) Status(t time.Time) domain.MarketStatus {
	switch {
	case !h.IsTradingDay(t):
		return domain.MarketWeekend
	case h.InPreOpen(t):
		return domain.MarketPreOpen
	case h.InSession(t):
		return domain.MarketOpen
	default:
		return domain.MarketClosed
	}
}
