package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for WebhookEventsTotal.
const (
	OutcomeApplied  = "applied"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomeDisabled = "disabled"
)

var (
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exotel_webhook_events_total",
		Help: "Exotel webhook deliveries by event and outcome",
	}, []string{"event", "outcome"})

	CallLogsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exotel_call_logs_created_total",
		Help: "Call log rows created from webhook deliveries",
	})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exotel_api_requests_total",
		Help: "Outbound Exotel REST requests by action and HTTP status class",
	}, []string{"action", "code"})

	CallLockContentionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exotel_call_lock_contention_total",
		Help: "Webhook deliveries that could not take the per-call lock and proceeded without it",
	})
)
