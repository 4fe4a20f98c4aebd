package metrics

import (
	"hotspot-voucher-manager/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		vouchersCreatedTotal,
		vouchersExpiredTotal,
		vouchersTotal,
	)
}

var (
	vouchersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vouchers_created_total",
			Help: "Total number of vouchers issued, per bundle.",
		},
		[]string{"bundle"},
	)

	vouchersExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vouchers_expired_total",
			Help: "Total number of vouchers flipped to expired by the sweep.",
		},
	)

	vouchersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vouchers_total",
			Help: "Current number of vouchers by status.",
		},
		[]string{"status"}, // 'available', 'active', 'used', 'expired'
	)
)

func IncVouchersCreated(bundleID string, count int) {
	vouchersCreatedTotal.WithLabelValues(bundleID).Add(float64(count))
}

func IncVouchersExpired(count int) {
	vouchersExpiredTotal.Add(float64(count))
}

func SetVouchersTotal(counts map[model.VoucherStatus]int) {
	statuses := []model.VoucherStatus{
		model.VoucherStatusAvailable,
		model.VoucherStatusActive,
		model.VoucherStatusUsed,
		model.VoucherStatusExpired,
	}
	for _, status := range statuses {
		vouchersTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
