package refptr

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for handle lifecycle monitoring.
var (
	//blocksAllocated prometheus metric.
	blocksAllocated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of counter blocks allocated",
			Name:      "blocks_allocated_total",
			Namespace: "refptr",
		},
	)
	//blocksFreed prometheus metric.
	blocksFreed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of counter blocks freed",
			Name:      "blocks_freed_total",
			Namespace: "refptr",
		},
	)
	//blocksLive prometheus metric.
	blocksLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of counter blocks referenced by at least one handle",
			Name:      "blocks_live",
			Namespace: "refptr",
		},
	)
	//payloadsDestroyed prometheus metric.
	payloadsDestroyed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of payloads destroyed after their last strong reference was dropped",
			Name:      "payloads_destroyed_total",
			Namespace: "refptr",
		},
	)
	//expiredPromotions prometheus metric.
	expiredPromotions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of failed strict weak to strong promotions",
			Name:      "expired_promotions_total",
			Namespace: "refptr",
		},
	)
)

func init() {
	prometheus.MustRegister(
		blocksAllocated,
		blocksFreed,
		blocksLive,
		payloadsDestroyed,
		expiredPromotions,
	)
}
