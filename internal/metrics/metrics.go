// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsIngestedTotal counts successfully persisted text records.
	RecordsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weaver_records_ingested_total",
		Help: "Total text records persisted to the store",
	})

	// BroadcastsSentTotal counts record deliveries enqueued to viewer connections.
	BroadcastsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weaver_broadcasts_sent_total",
		Help: "Total record deliveries enqueued to live viewer connections",
	})

	// ActiveConnections tracks currently registered viewer connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "weaver_websocket_active_connections",
		Help: "Currently connected live viewers",
	})

	// SlowClientsEvictedTotal counts viewers disconnected because their send
	// buffer was full when a broadcast arrived.
	SlowClientsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weaver_websocket_slow_clients_evicted_total",
		Help: "Viewer connections dropped for not keeping up with broadcasts",
	})

	// ConnectionsRejectedTotal counts viewers turned away at the connection cap.
	ConnectionsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weaver_websocket_connections_rejected_total",
		Help: "Viewer connections rejected because the connection cap was reached",
	})

	// HTTPErrorsTotal tracks HTTP errors by structured error type.
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weaver_http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)

	// BroadcasterCommandChannelDepth tracks the broadcaster actor queue depth.
	BroadcasterCommandChannelDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "weaver_broadcaster_command_channel_depth",
		Help: "Pending commands in the broadcaster command channel",
	})
)
