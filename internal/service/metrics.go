package service

import "time"

// Metrics is the subset of the Prometheus recorder the services use.
type Metrics interface {
	RecordFetch(source string, ok bool)
	RecordFailure(kind string)
	RecordQuote(symbol string, price float64, historySize int)
	RecordScan(netImpact float64)
	ObserveDuration(op string, started time.Time)
}

type NopMetrics struct{}

func (NopMetrics) RecordFetch(string, bool)          {}
func (NopMetrics) RecordFailure(string)              {}
func (NopMetrics) RecordQuote(string, float64, int)  {}
func (NopMetrics) RecordScan(float64)                {}
func (NopMetrics) ObserveDuration(string, time.Time) {}
