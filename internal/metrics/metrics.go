package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求指标
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coffeeshop_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeeshop_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	// 商品缓存指标
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_catalog_cache_hits_total",
		Help: "Catalog cache hits",
	}, []string{"driver"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_catalog_cache_misses_total",
		Help: "Catalog cache misses",
	}, []string{"driver"})

	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_catalog_cache_invalidations_total",
		Help: "Catalog cache invalidations",
	}, []string{"driver"})

	// 业务指标
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_orders_created_total",
		Help: "Orders created, by payment method",
	}, []string{"payment_method"})

	OrderStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_order_status_changes_total",
		Help: "Order status transitions, by target status",
	}, []string{"status"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_emails_sent_total",
		Help: "Notification emails, by template and result",
	}, []string{"template", "result"})
)
