package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Task metrics
	TasksCreatedTotal   prometheus.Counter
	TasksCompletedTotal prometheus.Counter
	TasksDeletedTotal   prometheus.Counter
	TasksActive         prometheus.Gauge
	WIPRejectionsTotal  prometheus.Counter
	WIPOverridesTotal   prometheus.Counter

	// Prompt metrics
	PromptsSentTotal     prometheus.Counter
	PromptResponsesTotal prometheus.CounterVec
	DigestsSentTotal     prometheus.Counter

	// Live connection metrics
	EventClientsActive prometheus.Gauge
	EventsDroppedTotal prometheus.Counter

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			TasksCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_tasks_created_total",
				Help: "Total number of tasks created",
			}),
			TasksCompletedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_tasks_completed_total",
				Help: "Total number of tasks completed",
			}),
			TasksDeletedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_tasks_deleted_total",
				Help: "Total number of tasks deleted",
			}),
			TasksActive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "tendo_tasks_active",
				Help: "Number of tasks currently in progress",
			}),
			WIPRejectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_wip_rejections_total",
				Help: "Task starts rejected by the WIP limit",
			}),
			WIPOverridesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_wip_overrides_total",
				Help: "Task starts that deliberately overrode the WIP limit",
			}),
			PromptsSentTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_prompts_sent_total",
				Help: "Proactive prompts emitted by the scheduler",
			}),
			PromptResponsesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tendo_prompt_responses_total",
					Help: "Prompt responses by action",
				},
				[]string{"action"},
			),
			DigestsSentTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_digests_sent_total",
				Help: "Daily digest events broadcast",
			}),
			EventClientsActive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "tendo_event_clients_active",
				Help: "Connected SSE/WebSocket clients",
			}),
			EventsDroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tendo_events_dropped_total",
				Help: "Events dropped due to slow clients",
			}),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by rate limiting",
				},
				[]string{"endpoint", "method"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
