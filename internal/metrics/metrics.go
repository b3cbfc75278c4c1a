// Package metrics exposes Prometheus metrics for verification runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"femcheck.openqed.org/internal/models"
)

// Metrics holds the collectors the status server exports.
type Metrics struct {
	registry *prometheus.Registry

	checkResults *prometheus.CounterVec
	linkResults  *prometheus.CounterVec
	runDuration  prometheus.Histogram
	lastRunTime  prometheus.Gauge
	lastRunOK    prometheus.Gauge
}

// New builds a metrics set on its own registry, keeping the default
// registry's Go runtime collectors out of test output.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checkResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "femcheck_check_results_total",
			Help: "Verification check outcomes by check name and status.",
		}, []string{"check", "status"}),
		linkResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "femcheck_link_results_total",
			Help: "Install-guide link check outcomes.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "femcheck_run_duration_seconds",
			Help:    "Duration of full verification runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "femcheck_last_run_timestamp_seconds",
			Help: "Completion time of the most recent verification run.",
		}),
		lastRunOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "femcheck_last_run_ok",
			Help: "1 when the most recent verification run had no failures.",
		}),
	}

	m.registry.MustRegister(m.checkResults, m.linkResults, m.runDuration, m.lastRunTime, m.lastRunOK)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveReport records the outcome of one verification run.
func (m *Metrics) ObserveReport(report models.Report) {
	for _, result := range report.Results {
		m.checkResults.WithLabelValues(result.Name, string(result.Status)).Inc()
	}
	m.runDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	m.lastRunTime.Set(float64(report.FinishedAt.Unix()))
	if report.Failed() {
		m.lastRunOK.Set(0)
	} else {
		m.lastRunOK.Set(1)
	}
}

// ObserveLinkReport records the outcome of one link-integrity pass.
func (m *Metrics) ObserveLinkReport(report models.LinkReport) {
	for _, link := range report.Results {
		result := "ok"
		if !link.OK {
			result = "broken"
		}
		m.linkResults.WithLabelValues(result).Inc()
	}
}
