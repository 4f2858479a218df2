package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Deck generation metrics
	DeckGenerations        *prometheus.CounterVec
	DeckGenerationDuration prometheus.Histogram
	ActiveDeckGenerations  prometheus.Gauge

	// Slide metrics
	SlideGenerations *prometheus.CounterVec

	// LLM metrics
	LLMRequests        *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		// Deck generations by final status
		DeckGenerations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "deckflow_deck_generation_total",
			Help: "Total number of deck generations by final status",
		}, []string{"status"}), // "success", "error", "cancelled"

		// End-to-end generation duration
		DeckGenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "deckflow_deck_generation_duration_seconds",
			Help:    "End-to-end deck generation duration in seconds",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200},
		}),

		// In-flight generations (gauge - can go up and down)
		ActiveDeckGenerations: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "deckflow_active_deck_generations",
			Help: "Number of deck generations currently in flight",
		}),

		// Per-slide outcomes
		SlideGenerations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "deckflow_slide_generation_total",
			Help: "Total number of slide generations by status",
		}, []string{"status"}),

		// LLM request outcomes by model
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "deckflow_llm_requests_total",
			Help: "Total number of LLM requests by model and status",
		}, []string{"model", "status"}),

		// LLM request latency by model
		LLMRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deckflow_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds by model",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"model"}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// DeckGenerationStarted records a generation entering the pipeline
func (m *Metrics) DeckGenerationStarted() {
	m.ActiveDeckGenerations.Inc()
}

// DeckGenerationFinished records a generation leaving the pipeline
func (m *Metrics) DeckGenerationFinished(status string, duration time.Duration) {
	m.ActiveDeckGenerations.Dec()
	m.DeckGenerations.WithLabelValues(status).Inc()
	m.DeckGenerationDuration.Observe(duration.Seconds())
}

// SlideGenerated records a single slide outcome
func (m *Metrics) SlideGenerated(status string) {
	m.SlideGenerations.WithLabelValues(status).Inc()
}

// RecordLLMRequest records an LLM call outcome and latency
func (m *Metrics) RecordLLMRequest(model, status string, duration time.Duration) {
	m.LLMRequests.WithLabelValues(model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}
