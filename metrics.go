package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkquest_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkquest_logins_total",
			Help: "Logins by outcome (existing or created).",
		},
		[]string{"outcome"},
	)

	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkquest_purchases_total",
			Help: "Shop purchase attempts by result.",
		},
		[]string{"result"},
	)

	answersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkquest_answers_total",
			Help: "Logged answers by subject and correctness.",
		},
		[]string{"subject", "correct"},
	)
)

// RequestMetrics counts requests by matched route so path parameters do not
// explode the label space.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
