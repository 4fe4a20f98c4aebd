package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(storageWritesTotal)
}

var storageWritesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storage_writes_total",
		Help: "Write-through persistence attempts by outcome (ok/full/error).",
	},
	[]string{"outcome"},
)

func IncStorageWrite(outcome string) {
	storageWritesTotal.WithLabelValues(outcome).Inc()
}
