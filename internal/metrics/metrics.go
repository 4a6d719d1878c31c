package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthorizationsCreated counts successful payment authorizations.
	AuthorizationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_authorizations_created_total",
		Help: "Number of payment authorizations created.",
	})

	// OrdersConfirmed counts orders committed by the confirmation workflow.
	OrdersConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_confirmed_total",
		Help: "Number of orders confirmed and persisted.",
	})

	// ConfirmFailures counts rejected confirmations by gate outcome.
	ConfirmFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_confirm_failures_total",
		Help: "Number of rejected order confirmations by reason.",
	}, []string{"reason"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
