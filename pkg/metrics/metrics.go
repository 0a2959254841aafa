// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LLMRequestDuration tracks LLM completion duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM completion duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// CasesTotal tracks cases reaching a final status.
	CasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cases_total",
			Help: "Total cases by intent and final status",
		},
		[]string{"intent", "status"},
	)

	// CaseHandlerDuration tracks handler execution time per intent.
	CaseHandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "case_handler_duration_seconds",
			Help:    "Case handler execution duration",
			Buckets: []float64{.001, .01, .1, .5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"intent", "status"},
	)

	// CasePersistenceFailures tracks failed case store writes.
	CasePersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_persistence_failures_total",
			Help: "Case store writes that failed",
		},
		[]string{"op"},
	)

	// ChatTurnsTotal tracks conversational turns by resolution path.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Chat turns by path (agent or fallback)",
		},
		[]string{"path"},
	)

	// ThreadsActive tracks cached conversation threads.
	ThreadsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_threads_active",
			Help: "Number of cached conversation threads",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMCall records metrics for an LLM completion.
func RecordLLMCall(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMRequestDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordCase records a case reaching its final status.
func RecordCase(intent, status string, handlerSeconds float64) {
	CasesTotal.WithLabelValues(intent, status).Inc()
	CaseHandlerDuration.WithLabelValues(intent, status).Observe(handlerSeconds)
}

// RecordPersistenceFailure records a failed store operation.
func RecordPersistenceFailure(op string) {
	CasePersistenceFailures.WithLabelValues(op).Inc()
}

// RecordChatTurn records how a chat turn was resolved.
func RecordChatTurn(path string) {
	ChatTurnsTotal.WithLabelValues(path).Inc()
}

// SetThreadsActive sets the cached thread count.
func SetThreadsActive(n int) {
	ThreadsActive.Set(float64(n))
}
