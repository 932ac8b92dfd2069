package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/pigfarm/pkg/prometheus"
)

// Metrics 请求计数与耗时中间件，指标注册在给定客户端上
func Metrics(client *prometheus.Client) (gin.HandlerFunc, error) {
	requests, err := client.NewCounter("http_requests_total", "Total number of admin HTTP requests.",
		[]string{"route", "method", "status"})
	if err != nil {
		return nil, err
	}
	duration, err := client.NewHistogram("http_request_duration_seconds", "Admin HTTP request latency in seconds.",
		[]string{"route", "method"}, nil)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}, nil
}
