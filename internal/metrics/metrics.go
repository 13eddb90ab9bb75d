// Package metrics holds the Prometheus collectors shared by the HTTP layer
// and the order service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout results used as the "result" label of CheckoutsTotal.
const (
	CheckoutOK       = "ok"
	CheckoutRejected = "rejected"
	CheckoutFailed   = "failed"
	CheckoutReplayed = "replayed"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ngantri_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ngantri_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6},
		},
		[]string{"method", "route"},
	)

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngantri_orders_created_total",
		Help: "Orders persisted by checkout",
	})

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ngantri_checkouts_total",
			Help: "Checkout attempts by result",
		},
		[]string{"result"},
	)
)
