package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatgraph_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatgraph_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	GraphQLOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatgraph_graphql_operations_total",
		Help: "GraphQL operations by operation name and outcome.",
	}, []string{"operation", "outcome"})

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatgraph_graphql_active_subscriptions",
		Help: "GraphQL subscriptions currently streaming over websocket.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatgraph_events_published_total",
		Help: "Chat change notifications published by topic and result.",
	}, []string{"topic", "result"})
)
