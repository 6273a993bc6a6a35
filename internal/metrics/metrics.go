package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch results recorded under the result label.
const (
	ResultOK         = "ok"
	ResultMissingKey = "missing_key"
	ResultEmpty      = "empty"
	ResultError      = "error"
	ResultInvalid    = "invalid"
)

// Metrics holds the Prometheus collectors for loader and calculator activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchTotal    *prometheus.CounterVec   // labels: kind, result
	FetchDuration *prometheus.HistogramVec // labels: kind
	TableRows     *prometheus.GaugeVec     // labels: kind
	IndicatorRuns *prometheus.CounterVec   // labels: result
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketlens_fetch_total",
			Help: "Data API fetches by series kind and result",
		}, []string{"kind", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketlens_fetch_duration_seconds",
			Help:    "Data API round trip including normalization",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		TableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "marketlens_table_rows",
			Help: "Rows in the most recent normalized table per series kind",
		}, []string{"kind"}),
		IndicatorRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketlens_indicator_runs_total",
			Help: "Indicator calculations by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.FetchTotal,
		m.FetchDuration,
		m.TableRows,
		m.IndicatorRuns,
	)
	return m
}

// ObserveFetch records one loader call.
func (m *Metrics) ObserveFetch(kind, result string, took time.Duration, rows int) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(kind, result).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(took.Seconds())
	if result == ResultOK {
		m.TableRows.WithLabelValues(kind).Set(float64(rows))
	}
}

// ObserveIndicators records one calculator run.
func (m *Metrics) ObserveIndicators(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.IndicatorRuns.WithLabelValues(ResultError).Inc()
		return
	}
	m.IndicatorRuns.WithLabelValues(ResultOK).Inc()
}
