package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_store_operations_total",
		Help: "Content store operations by collection and operation.",
	}, []string{"collection", "op"})

	opErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_store_errors_total",
		Help: "Failed content store operations by collection and operation.",
	}, []string{"collection", "op"})
)
