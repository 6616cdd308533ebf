package bot

import "github.com/prometheus/client_golang/prometheus"

var (
	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_bot_actions_total",
			Help: "Button actions handled, by kind.",
		},
		[]string{"kind"},
	)
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_bot_submissions_total",
			Help: "Inbound submissions handled, by outcome.",
		},
		[]string{"outcome"},
	)
	ticketsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_bot_tickets_created_total",
			Help: "Tickets successfully created.",
		},
	)
	notifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_bot_notify_failures_total",
			Help: "Notification deliveries that failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(actionsTotal, submissionsTotal, ticketsCreated, notifyFailures)
}

// CountNotifyFailure is handed to the notification dispatcher.
func CountNotifyFailure() {
	notifyFailures.Inc()
}
