package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settle_requests_total",
			Help: "Total draw/settlement attempts by result",
		},
		[]string{"result"},
	)

	settleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settle_request_duration_ms",
			Help:    "Settlement processing duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)

	settleParticipants = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settle_eligible_participants",
			Help:    "Eligible participant count at settlement time",
			Buckets: prometheus.ExponentialBuckets(2, 2, 12),
		},
	)
)

// RecordSettle 记录一次开奖结算的业务指标
// result: "success" | "success_idempotent" | "insufficient" | "conflict" | "fail"
func RecordSettle(result string, started time.Time) {
	settleTotal.WithLabelValues(result).Inc()
	settleDuration.WithLabelValues(result).Observe(float64(time.Since(started).Milliseconds()))
}

// RecordSettleParticipants 记录开奖时的有效参与人数分布
func RecordSettleParticipants(n int) {
	settleParticipants.Observe(float64(n))
}
