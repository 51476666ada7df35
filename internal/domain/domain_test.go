package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestQuoteValidate(t *testing.T) {
	tests := []struct {
		name    string
		quote   Quote
		wantErr bool
	}{
		{"consistent", Quote{Price: 100, Open: 99, High: 101, Low: 98}, false},
		{"price equals high", Quote{Price: 101, Open: 99, High: 101, Low: 98}, false},
		{"zero price", Quote{Price: 0, Open: 99, High: 101, Low: 98}, true},
		{"zero low", Quote{Price: 100, Open: 99, High: 101, Low: 0}, true},
		{"high below price", Quote{Price: 102, Open: 99, High: 101, Low: 98}, true},
		{"high below open", Quote{Price: 100, Open: 103, High: 101, Low: 98}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quote.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected malformed response, got %v", err)
			}
		})
	}
}

func TestQuoteReliability(t *testing.T) {
	q := Quote{Price: 100, Open: 100.1, High: 100.2, Low: 99.8, EstimatedOHLC: true}
	if !q.HasOHLC() {
		t.Error("expected OHLC to be present")
	}
	if q.ReliabilityLabel() != "estimated" {
		t.Errorf("label = %q", q.ReliabilityLabel())
	}
	q.EstimatedOHLC = false
	q.EstimatedVolume = true
	if q.ReliabilityLabel() != "live" {
		t.Errorf("estimated volume alone should stay live, label = %q", q.ReliabilityLabel())
	}
	if (Quote{Price: 100}).HasOHLC() {
		t.Error("price-only quote should not report OHLC")
	}
}

func TestIndicatorSetJSON(t *testing.T) {
	raw, err := json.Marshal(InsufficientIndicators(7))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"status":"insufficient_data","points":7}` {
		t.Errorf("insufficient set = %s", raw)
	}

	ready := IndicatorSet{Status: IndicatorsSuccess, Points: 30, RSI: 0, MACD: 0}
	raw, err = json.Marshal(ready)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"rsi":0`, `"macd":0`, `"volume_ratio":0`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("expected %s in %s", want, raw)
		}
	}
}

func TestKindOf(t *testing.T) {
	exhausted := fmt.Errorf("%w: NIFTY 50: %w", ErrNoDataAvailable,
		errors.Join(fmt.Errorf("nse: %w", ErrProviderUnavailable), fmt.Errorf("yahoo: %w", ErrMalformedResponse)))

	tests := []struct {
		err  error
		want FailureKind
	}{
		{nil, ""},
		{fmt.Errorf("nse: %w", ErrProviderUnavailable), KindProviderUnavailable},
		{fmt.Errorf("yahoo: %w", ErrMalformedResponse), KindMalformedResponse},
		{exhausted, KindNoDataAvailable},
		{fmt.Errorf("%w: 5 points", ErrInsufficientHistory), KindInsufficientHistory},
		{ErrAnalysis, KindAnalysisError},
		{errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestInsufficientIndicators(t *testing.T) {
	set := InsufficientIndicators(7)
	if set.Ready() {
		t.Fatal("insufficient set must not be ready")
	}
	if set.Points != 7 || set.Status != IndicatorsInsufficient {
		t.Fatalf("unexpected set %+v", set)
	}
	if !(IndicatorSet{Status: IndicatorsSuccess}).Ready() {
		t.Fatal("success set must be ready")
	}
}
