package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts dispatched messages by route and engine outcomes by kind.
type Collector struct {
	dispatched *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
}

// NewCollector registers the bot's metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewaq_messages_dispatched_total",
			Help: "Messages dispatched, by route (start, help, checkin, checkout, guard, assistant).",
		}, []string{"route"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewaq_attendance_outcomes_total",
			Help: "Attendance engine outcomes, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(c.dispatched, c.outcomes)
	return c
}

// RecordDispatch counts one message routed to the given handler.
func (c *Collector) RecordDispatch(route string) {
	if c == nil {
		return
	}
	c.dispatched.WithLabelValues(route).Inc()
}

// RecordOutcome counts one engine outcome.
func (c *Collector) RecordOutcome(kind string) {
	if c == nil {
		return
	}
	c.outcomes.WithLabelValues(kind).Inc()
}
