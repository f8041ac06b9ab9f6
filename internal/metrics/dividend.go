package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gb-server/common/helper"
)

var (
	dividendCreditTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dividend_credit_total",
			Help: "Dividend credit attempts by result",
		},
		[]string{"result"},
	)

	dividendCreditAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dividend_credit_amount_units",
			Help: "Total credited dividend amount in minor currency units",
		},
	)

	_ = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "wallet_http_active_connections",
			Help: "In-flight wallet credit HTTP requests",
		},
		func() float64 {
			active, _ := helper.GetConcurrencyStats()
			return float64(active)
		},
	)

	_ = promauto.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "wallet_http_requests_total",
			Help: "Total wallet credit HTTP requests",
		},
		func() float64 {
			_, total := helper.GetConcurrencyStats()
			return float64(total)
		},
	)
)

// RecordDividendCredit 记录一次分红入账结果
// result: "success" | "fail" | "skip"
func RecordDividendCredit(result string, amountUnits int64) {
	dividendCreditTotal.WithLabelValues(result).Inc()
	if result == "success" && amountUnits > 0 {
		dividendCreditAmount.Add(float64(amountUnits))
	}
}
