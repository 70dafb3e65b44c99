// Package nlmetrics defines the prometheus metrics emitted by the router
// and socket layers, using promauto's register-at-declaration style.
package nlmetrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestLatencyHistogram tracks the time between a request being sent
	// and its stream being finished (terminal reply, cancellation, or
	// overrun reset), keyed by the family label the caller passed to
	// Router.Request. Bucket boundaries run from 1ms to 500ms.
	RequestLatencyHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nlrouter_request_latency_seconds",
			Help: "netlink request round-trip latency distribution (seconds)",
			Buckets: []float64{
				0.001, 0.00125, 0.0016, 0.002, 0.0025, 0.0032, 0.004, 0.005, 0.0063, 0.0079,
				0.01, 0.0125, 0.016, 0.02, 0.025, 0.032, 0.04, 0.05, 0.063, 0.079,
				0.1, 0.125, 0.16, 0.2, 0.25, 0.32, 0.4, 0.5,
			},
		},
		[]string{"family"})

	// SpoofedPeerCount counts replies discarded because their pid field
	// did not match the router's bound port id.
	SpoofedPeerCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlrouter_spoofed_peer_total",
			Help: "Number of datagrams rejected for an unexpected peer port id.",
		},
	)

	// OrphanReplyCount counts replies whose sequence number matches no
	// entry in the pending table -- either a late reply after the caller
	// gave up, or an unsolicited message on a request socket.
	OrphanReplyCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlrouter_orphan_reply_total",
			Help: "Number of replies that matched no pending request.",
		},
	)

	// DumpInterruptedCount counts NLM_F_DUMP_INTR replies, signalling a
	// dump that raced a concurrent table change and should be retried, plus
	// one per pending request reset by a kernel OVERRUN frame.
	DumpInterruptedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlrouter_dump_interrupted_total",
			Help: "Number of dump responses flagged NLM_F_DUMP_INTR.",
		},
	)

	// RouterShutdownCount counts how many times a Router's demultiplexer
	// loop has exited, for alerting on unexpected restarts.
	RouterShutdownCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlrouter_shutdown_total",
			Help: "Number of times the router demultiplexer loop has exited.",
		},
	)

	// PendingRequestGauge tracks how many sequence numbers are currently
	// awaiting a reply.
	PendingRequestGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nlrouter_pending_requests",
			Help: "Number of in-flight requests awaiting a reply.",
		},
	)

	// MulticastDeliveredCount counts multicast messages handed to a
	// subscriber, by group.
	MulticastDeliveredCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlrouter_multicast_delivered_total",
			Help: "Number of multicast messages delivered to subscribers.",
		}, []string{"group"})
)

func init() {
	log.Println("Prometheus metrics in nlmetrics are registered.")
}
