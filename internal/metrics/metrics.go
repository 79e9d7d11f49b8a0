// Package metrics holds the relay's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OnlineSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_online_sessions",
			Help: "Number of connected sessions per channel",
		},
		[]string{"channel"},
	)

	RegisteredSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_registered_sessions",
			Help: "Number of sessions held by the connection registry per channel",
		},
		[]string{"channel"},
	)

	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_ingested_total",
			Help: "Total number of events accepted by the ingestion endpoint",
		},
		[]string{"type"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_rejected_total",
			Help: "Total number of ingestion requests rejected before broadcast",
		},
		[]string{"route"},
	)

	FramesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_frames_sent_total",
			Help: "Total number of frames queued to sessions",
		},
		[]string{"channel", "event"},
	)

	SlowClientsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_slow_clients_dropped_total",
			Help: "Total number of sessions disconnected because their send buffer was full",
		},
		[]string{"channel"},
	)
)
