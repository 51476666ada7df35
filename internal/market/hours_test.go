package market

import (
	"testing"
	"time"

	"index-pulse/internal/domain"
)

func nseHours(t *testing.T) Hours {
	t.Helper()
	days, err := ParseDays([]string{"Mon", "Tue", "Wed", "Thu", "Friday"})
	if err != nil {
		t.Fatal(err)
	}
	return Hours{
		Location:     time.FixedZone("IST", 5*3600+30*60),
		Open:         9*60 + 15,
		Close:        15*60 + 30,
		PreOpenStart: 9 * 60,
		PreOpenEnd:   9*60 + 15,
		Days:         days,
	}
}

func TestHoursStatus(t *testing.T) {
	h := nseHours(t)
	ist := h.Location
	cases := []struct {
		at   time.Time
		want domain.MarketStatus
	}{
		{time.Date(2025, 3, 3, 9, 5, 0, 0, ist), domain.MarketPreOpen},
		{time.Date(2025, 3, 3, 9, 15, 0, 0, ist), domain.MarketOpen},
		{time.Date(2025, 3, 3, 15, 29, 0, 0, ist), domain.MarketOpen},
		{time.Date(2025, 3, 3, 15, 30, 0, 0, ist), domain.MarketClosed},
		{time.Date(2025, 3, 8, 11, 0, 0, 0, ist), domain.MarketWeekend},
		// 04:00 UTC is 09:30 IST.
		{time.Date(2025, 3, 4, 4, 0, 0, 0, time.UTC), domain.MarketOpen},
	}
	for _, tc := range cases {
		if got := h.Status(tc.at); got != tc.want {
			t.Errorf("%v: expected %s, got %s", tc.at, tc.want, got)
		}
	}
}

func TestParseClockAndDays(t *testing.T) {
	if m, err := ParseClock("09:15"); err != nil || m != 555 {
		t.Fatalf("unexpected clock parse: %d %v", m, err)
	}
	if _, err := ParseClock("9am"); err == nil {
		t.Fatal("expected clock error")
	}
	if _, err := ParseDays([]string{"Funday"}); err == nil {
		t.Fatal("expected weekday error")
	}
	if _, err := ParseDays(nil); err == nil {
		t.Fatal("expected error for empty mask")
	}
}

func TestLoadLocationFallback(t *testing.T) {
	loc := LoadLocation("Not/AZone")
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset != 19800 {
		t.Fatalf("expected IST fallback offset, got %d", offset)
	}
}
