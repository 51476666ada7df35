package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes engine activity as Prometheus series.
type Recorder struct {
	fetches     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	historySize prometheus.Gauge
	netImpact   prometheus.Gauge
	latency     *prometheus.HistogramVec
}

// New registers the series on reg; pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_quote_fetches_total",
				Help: "Quote fetch attempts by source and result",
			},
			[]string{"source", "result"},
		),
		failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_failures_total",
				Help: "Failures by kind",
			},
			[]string{"kind"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexpulse_last_price",
				Help: "Last accepted index price",
			},
			[]string{"symbol"},
		),
		historySize: f.NewGauge(prometheus.GaugeOpts{
			Name: "indexpulse_history_size",
			Help: "Quotes currently held in the history buffer",
		}),
		netImpact: f.NewGauge(prometheus.GaugeOpts{
			Name: "indexpulse_preopen_net_impact",
			Help: "Net weighted impact of the latest pre-open scan",
		}),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexpulse_operation_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordFetch(source string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.fetches.WithLabelValues(source, result).Inc()
}

func (r *Recorder) RecordFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordQuote(symbol string, price float64, historySize int) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
	r.historySize.Set(float64(historySize))
}

func (r *Recorder) RecordScan(netImpact float64) {
	r.netImpact.Set(netImpact)
}

func (r *Recorder) ObserveDuration(op string, started time.Time) {
	r.latency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
