package sentiment

import (
	"math"

	"index-pulse/internal/domain"
)

const levelProximity = 0.01

// PlanEntryExit collects advisory entry (BUY) and exit (SELL) triggers and
// picks the side with more of them. Nil when indicators are not ready.
func PlanEntryExit(q domain.Quote, ind domain.IndicatorSet) *domain.EntryExitPlan {
	if !ind.Ready() || q.Price <= 0 {
		return nil
	}
	p := q.Price
	sma20, sma50 := ind.SMA[20], ind.SMA[50]

	var entries, exits []domain.TradeSignal
	add := func(dst *[]domain.TradeSignal, action domain.TradeAction, reason string, conf, target, stop float64) {
		*dst = append(*dst, domain.TradeSignal{Action: action, Reason: reason, Confidence: conf, Target: target, StopLoss: stop})
	}

	switch {
	case ind.RSI < oversold:
		add(&entries, domain.ActionBuy, "RSI oversold", 85, p*1.02, p*0.985)
	case ind.RSI > overbought:
		add(&exits, domain.ActionSell, "RSI overbought", 85, p*0.98, p*1.015)
	}

	switch {
	case p > sma20 && sma20 > sma50:
		add(&entries, domain.ActionBuy, "Price above rising SMA20/SMA50 stack", 75, p*1.015, sma20*0.99)
	case p < sma20 && sma20 < sma50:
		add(&exits, domain.ActionSell, "Price below falling SMA20/SMA50 stack", 75, p*0.985, sma20*1.01)
	}

	switch ind.BollingerPosition {
	case domain.BandBelowLower, domain.BandLowerZone:
		add(&entries, domain.ActionBuy, "Bounce off lower Bollinger band", 70, ind.BollingerUpper, ind.BollingerLower*0.995)
	case domain.BandAboveUpper, domain.BandUpperZone:
		add(&exits, domain.ActionSell, "Rejection at upper Bollinger band", 70, ind.BollingerLower, ind.BollingerUpper*1.005)
	}

	switch {
	case ind.MACD > ind.MACDSignal && ind.MACD > 0:
		add(&entries, domain.ActionBuy, "MACD above signal line", 65, p*1.01, p*0.99)
	case ind.MACD < ind.MACDSignal && ind.MACD < 0:
		add(&exits, domain.ActionSell, "MACD below signal line", 65, p*0.99, p*1.01)
	}

	if ind.Support > 0 && math.Abs(p-ind.Support)/p <= levelProximity {
		add(&entries, domain.ActionBuy, "Price near support", 70, ind.Resistance, ind.Support*0.98)
	}
	if ind.Resistance > 0 && math.Abs(ind.Resistance-p)/p <= levelProximity {
		add(&exits, domain.ActionSell, "Price near resistance", 70, ind.Support, ind.Resistance*1.02)
	}

	plan := &domain.EntryExitPlan{
		Action:       domain.ActionHold,
		Strength:     50,
		Price:        p,
		EntrySignals: entries,
		ExitSignals:  exits,
	}

	var chosen []domain.TradeSignal
	switch {
	case len(entries) > len(exits):
		plan.Action, chosen = domain.ActionBuy, entries
	case len(exits) > len(entries):
		plan.Action, chosen = domain.ActionSell, exits
	default:
		return plan
	}
	plan.Strength = math.Min(float64(len(chosen))*20, 100)

	for _, s := range chosen {
		plan.AvgTarget += s.Target
		plan.AvgStopLoss += s.StopLoss
	}
	plan.AvgTarget /= float64(len(chosen))
	plan.AvgStopLoss /= float64(len(chosen))
	plan.RiskRewardRatio = riskReward(plan.Action, p, plan.AvgTarget, plan.AvgStopLoss)
	return plan
}

func riskReward(action domain.TradeAction, price, target, stop float64) float64 {
	var reward, risk float64
	if action == domain.ActionBuy {
		reward, risk = target-price, price-stop
	} else {
		reward, risk = price-target, stop-price
	}
	if risk <= 0 {
		return 0
	}
	return reward / risk
}
