package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"index-pulse/internal/domain"
)

const unavailableMsg = `❌ <b>MARKET DATA UNAVAILABLE</b>

⚠️ All data sources are currently unavailable.
🔄 Please try again in a few minutes.`

const welcomeMsg = `🤖 <b>NIFTY 50 MARKET ASSISTANT</b>

📊 <b>Commands:</b>
/market - Price, day range and quick analysis
/technical - Technical indicators
/signals - Sentiment and recommendations
/entry - Entry/exit plan
/preopen - Latest pre-open movers and gap prediction
/scan - Run a pre-open scan now
/status - System status

<i>⚠️ For educational purposes only</i>`

func title(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func changeMarks(change float64) (color, arrow string) {
	switch {
	case change > 0:
		return "🟢", "📈"
	case change < 0:
		return "🔴", "📉"
	default:
		return "🟡", "➡️"
	}
}

func trendMark(label string) string {
	switch label {
	case domain.TrendBullish:
		return "📈"
	case domain.TrendBearish:
		return "📉"
	default:
		return "➡️"
	}
}

func sentimentMark(label domain.SentimentLabel) string {
	switch label {
	case domain.SentimentBullish:
		return "🐂"
	case domain.SentimentBearish:
		return "🐻"
	default:
		return "😐"
	}
}

func rsiZone(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought"
	case rsi < 30:
		return "Oversold"
	default:
		return "Neutral"
	}
}

func waitingMsg(points int) string {
	return fmt.Sprintf("⏳ Indicators need %d data points, have %d.", domain.MinIndicatorPoints, points)
}

// FormatMarket renders the /market reply.
func FormatMarket(v domain.MarketView, loc *time.Location) string {
	q := v.Quote
	if q == nil {
		return unavailableMsg
	}
	color, arrow := changeMarks(q.Change)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b> %s\n\n", color, html.EscapeString(q.Symbol), color)
	fmt.Fprintf(&b, "💰 <b>Current Price:</b> ₹%.2f\n", q.Price)
	if q.ChangeUnresolved {
		b.WriteString("➖ <b>Change:</b> n/a\n\n")
	} else {
		fmt.Fprintf(&b, "%s <b>Change:</b> %+.2f (%+.2f%%)\n\n", arrow, q.Change, q.ChangePct)
	}
	fmt.Fprintf(&b, "📊 <b>Day Statistics</b> (%s):\n", q.ReliabilityLabel())
	fmt.Fprintf(&b, "• Open: ₹%.2f\n• High: ₹%.2f\n• Low: ₹%.2f\n", q.Open, q.High, q.Low)
	if q.PrevClose > 0 {
		fmt.Fprintf(&b, "• Prev Close: ₹%.2f\n", q.PrevClose)
	}
	fmt.Fprintf(&b, "\n🔄 <b>Market Status:</b> %s\n", title(string(v.Status)))

	ind := v.Indicators
	if ind.Ready() {
		b.WriteString("\n📈 <b>TECHNICAL ANALYSIS:</b>\n")
		sma20 := ind.SMA[20]
		pos := "Below"
		if q.Price > sma20 {
			pos = "Above"
		}
		fmt.Fprintf(&b, "• SMA(20): ₹%.2f (%s)\n", sma20, pos)
		fmt.Fprintf(&b, "• RSI(14): %.1f (%s)\n", ind.RSI, rsiZone(ind.RSI))
		fmt.Fprintf(&b, "• Trend: %s %s\n", trendMark(ind.ShortTrend), ind.ShortTrend)
		fmt.Fprintf(&b, "• Support: ₹%.2f\n• Resistance: ₹%.2f\n", ind.Support, ind.Resistance)
	} else {
		b.WriteString("\n" + waitingMsg(ind.Points) + "\n")
	}

	if s := v.Sentiment; s != nil {
		fmt.Fprintf(&b, "\n🤖 <b>SENTIMENT:</b> %s %s (%.0f%% confidence)\n", sentimentMark(s.Label), s.Label, s.Confidence)
	}

	fmt.Fprintf(&b, "\n📱 <b>Source:</b> %s", html.EscapeString(q.Source))
	fmt.Fprintf(&b, "\n⏰ <b>Updated:</b> %s", q.CapturedAt.In(loc).Format("15:04:05"))
	return b.String()
}

// FormatTechnical renders the /technical reply.
func FormatTechnical(v domain.MarketView) string {
	ind := v.Indicators
	if v.Quote == nil {
		return unavailableMsg
	}
	if !ind.Ready() {
		return "📈 <b>TECHNICAL ANALYSIS</b>\n\n" + waitingMsg(ind.Points)
	}
	price := v.Quote.Price

	var b strings.Builder
	b.WriteString("📈 <b>NIFTY 50 - TECHNICAL ANALYSIS</b>\n\n")
	b.WriteString("📊 <b>MOVING AVERAGES:</b>\n")
	for _, k := range []int{5, 10, 20, 50} {
		if sma, ok := ind.SMA[k]; ok && sma > 0 {
			fmt.Fprintf(&b, "• SMA(%d): ₹%.2f (%+.1f%%)\n", k, sma, (price/sma-1)*100)
		}
	}
	fmt.Fprintf(&b, "• EMA(12): ₹%.2f\n• EMA(26): ₹%.2f\n", ind.EMAFast, ind.EMASlow)

	b.WriteString("\n⚡ <b>MOMENTUM:</b>\n")
	fmt.Fprintf(&b, "• RSI(14): %.1f (%s)\n", ind.RSI, rsiZone(ind.RSI))
	fmt.Fprintf(&b, "• MACD: %.2f / Signal %.2f / Hist %+.2f\n", ind.MACD, ind.MACDSignal, ind.MACDHist)
	fmt.Fprintf(&b, "• Stochastic %%K: %.1f\n", ind.Stochastic)

	b.WriteString("\n🎯 <b>BOLLINGER BANDS:</b>\n")
	fmt.Fprintf(&b, "• Upper: ₹%.2f\n• Middle: ₹%.2f\n• Lower: ₹%.2f\n", ind.BollingerUpper, ind.BollingerMiddle, ind.BollingerLower)
	fmt.Fprintf(&b, "• Position: %s\n", title(ind.BollingerPosition))

	b.WriteString("\n🧱 <b>LEVELS:</b>\n")
	fmt.Fprintf(&b, "• Support: ₹%.2f (strong ₹%.2f)\n", ind.Support, ind.StrongSupport)
	fmt.Fprintf(&b, "• Resistance: ₹%.2f (strong ₹%.2f)\n", ind.Resistance, ind.StrongResistance)

	b.WriteString("\n📈 <b>TREND ANALYSIS:</b>\n")
	fmt.Fprintf(&b, "• Short: %s %s\n", trendMark(ind.ShortTrend), ind.ShortTrend)
	fmt.Fprintf(&b, "• Medium: %s %s\n", trendMark(ind.MediumTrend), ind.MediumTrend)
	fmt.Fprintf(&b, "• Long: %s %s\n", trendMark(ind.LongTrend), ind.LongTrend)
	fmt.Fprintf(&b, "• Volume ratio: %.2fx\n• Volatility: %.2f%%", ind.VolumeRatio, ind.Volatility)
	if v.Quote.EstimatedOHLC {
		b.WriteString("\n\n<i>OHLC estimated from price</i>")
	}
	if ind.VolumeEstimated {
		b.WriteString("\n<i>Volume ratio uses time-of-day volume estimates</i>")
	}
	return b.String()
}

// FormatSignals renders the /signals reply.
func FormatSignals(v domain.MarketView) string {
	s := v.Sentiment
	if s == nil {
		return "🤖 <b>SENTIMENT</b>\n\n" + waitingMsg(v.Indicators.Points)
	}

	var b strings.Builder
	b.WriteString("🤖 <b>MARKET SENTIMENT - NIFTY 50</b>\n\n")
	fmt.Fprintf(&b, "%s <b>Overall:</b> %s\n", sentimentMark(s.Label), s.Label)
	fmt.Fprintf(&b, "🎯 <b>Confidence:</b> %.0f%%\n", s.Confidence)
	fmt.Fprintf(&b, "📊 <b>Votes:</b> %d bullish / %d bearish\n", s.BullishSignals, s.BearishSignals)

	b.WriteString("\n🔎 <b>Factors:</b>\n")
	if len(s.Factors) == 0 {
		b.WriteString("• No active signals detected\n")
	}
	for i, f := range s.Factors {
		fmt.Fprintf(&b, "%d. %s\n", i+1, html.EscapeString(f))
	}

	b.WriteString("\n💡 <b>Recommendations:</b>\n")
	for _, r := range s.Recommendations {
		fmt.Fprintf(&b, "• %s\n", html.EscapeString(r))
	}
	b.WriteString("\n<i>⚠️ For educational purposes only</i>")
	return b.String()
}

// FormatEntryExit renders the /entry reply.
func FormatEntryExit(v domain.MarketView) string {
	p := v.Plan
	if p == nil {
		return "🎯 <b>ENTRY/EXIT</b>\n\n" + waitingMsg(v.Indicators.Points)
	}

	var b strings.Builder
	b.WriteString("🎯 <b>ENTRY/EXIT PLAN - NIFTY 50</b>\n\n")
	fmt.Fprintf(&b, "<b>Action:</b> %s (strength %.0f/100)\n", p.Action, p.Strength)
	fmt.Fprintf(&b, "<b>Price:</b> ₹%.2f\n", p.Price)

	writeSignals := func(heading string, signals []domain.TradeSignal) {
		if len(signals) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", heading)
		for _, s := range signals {
			fmt.Fprintf(&b, "• %s (%.0f%%) target ₹%.2f stop ₹%.2f\n", html.EscapeString(s.Reason), s.Confidence, s.Target, s.StopLoss)
		}
	}
	writeSignals("🟢 <b>Entry signals:</b>", p.EntrySignals)
	writeSignals("🔴 <b>Exit signals:</b>", p.ExitSignals)

	if p.Action != domain.ActionHold {
		fmt.Fprintf(&b, "\n📐 Avg target ₹%.2f · Avg stop ₹%.2f · R:R %.2f\n", p.AvgTarget, p.AvgStopLoss, p.RiskRewardRatio)
	} else {
		b.WriteString("\n🤚 No clear setup. Wait for confirmation.\n")
	}
	b.WriteString("\n<i>⚠️ For educational purposes only</i>")
	return b.String()
}

// FormatPreOpen renders the /preopen and /scan replies.
func FormatPreOpen(v domain.PreOpenView, loc *time.Location) string {
	a := v.Analysis
	if a == nil {
		return "🌅 <b>PRE-OPEN</b>\n\nNo pre-open scan yet. Scans run between 09:00 and 09:15 IST, or use /scan."
	}

	var b strings.Builder
	b.WriteString("🌅 <b>PRE-OPEN MOVERS - NIFTY 50</b>\n\n")
	fmt.Fprintf(&b, "<b>Prediction:</b> %s (%s, %.0f%%)\n", a.Gap, a.Sentiment, a.Probability)
	fmt.Fprintf(&b, "<b>Net impact:</b> %+.3f\n", a.NetImpact)

	writeMovers := func(heading string, movers []domain.Mover) {
		fmt.Fprintf(&b, "\n%s\n", heading)
		if len(movers) == 0 {
			b.WriteString("• none\n")
			return
		}
		for i, m := range movers {
			if i == 5 {
				fmt.Fprintf(&b, "• … %d more\n", len(movers)-5)
				break
			}
			fmt.Fprintf(&b, "• %s %+.2f%% ₹%.2f (%s)\n", html.EscapeString(m.Symbol), m.ChangePct, m.Price, html.EscapeString(m.Sector))
		}
	}
	writeMovers("📈 <b>Top gainers:</b>", v.Gainers)
	writeMovers("📉 <b>Top losers:</b>", v.Losers)

	if len(a.TopSectors) > 0 {
		b.WriteString("\n🏭 <b>Sectors:</b>\n")
		for i, s := range a.TopSectors {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "• %s %+.3f\n", html.EscapeString(s.Sector), s.Impact)
		}
	}
	fmt.Fprintf(&b, "\n⏰ <b>Scanned:</b> %s", a.ScannedAt.In(loc).Format("15:04:05"))
	return b.String()
}

// FormatStatus renders the /status reply.
func FormatStatus(s domain.ServiceStatus, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("📊 <b>SYSTEM STATUS</b>\n\n")
	fmt.Fprintf(&b, "🕒 <b>Market Status:</b> %s\n", title(string(s.MarketStatus)))
	fmt.Fprintf(&b, "💾 <b>Cache:</b> %d entries\n", s.CacheSize)
	fmt.Fprintf(&b, "📈 <b>Price History:</b> %d/%d data points\n", s.HistorySize, s.HistoryCapacity)
	fmt.Fprintf(&b, "🔁 <b>Fetches:</b> %d ok, %d failed\n", s.Fetches, s.Failures)
	fmt.Fprintf(&b, "⏰ <b>Last fetch:</b> %s\n", clock(s.LastFetchAt, loc))
	fmt.Fprintf(&b, "🌅 <b>Last pre-open scan:</b> %s", clock(s.LastScanAt, loc))
	return b.String()
}

func clock(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "never"
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}
