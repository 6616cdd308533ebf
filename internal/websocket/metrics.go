package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "support_bot_ws_connections",
			Help: "Current number of connected feed clients.",
		},
	)
	wsEventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_bot_ws_events_delivered_total",
			Help: "Total ticket events delivered to feed clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsEventsDelivered)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func addDelivered(count int) {
	wsEventsDelivered.Add(float64(count))
}
