package provider

import (
	"strings"

	"index-pulse/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// number reads a numeric field that upstreams send either as a JSON number
// or as a string such as "22,145.60". Missing, null and "-" are reported as absent.
func number(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Float(), true
	case gjson.String:
		s := strings.ReplaceAll(strings.TrimSpace(r.Str), ",", "")
		if s == "" || s == "-" {
			return 0, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	default:
		return 0, false
	}
}

// round2 rounds to two decimal places, the precision upstreams quote in.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// resolveChange fills Change and ChangePct from upstream values when present,
// otherwise from PrevClose. With neither the quote is marked ChangeUnresolved
// so consumers do not read a flat session.
func resolveChange(q *domain.Quote, change float64, changeOK bool, pct float64, pctOK bool) {
	if !changeOK && q.PrevClose > 0 {
		change, changeOK = round2(q.Price-q.PrevClose), true
	}
	if !pctOK && q.PrevClose > 0 {
		pct, pctOK = round2((q.Price-q.PrevClose)/q.PrevClose*100), true
	}
	if !changeOK || !pctOK {
		q.Change, q.ChangePct, q.ChangeUnresolved = 0, 0, true
		return
	}
	q.Change, q.ChangePct = change, pct
}
