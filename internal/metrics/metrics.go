package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fanzone_webhook_events_received_total",
		Help: "POS webhook events received, by event type.",
	}, []string{"type"})

	WebhookEventsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fanzone_webhook_events_rejected_total",
		Help: "POS webhook events rejected for a bad signature or payload.",
	})

	WebhookEventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fanzone_webhook_events_applied_total",
		Help: "POS webhook events that changed a loyalty account, by event type.",
	}, []string{"type"})
)
