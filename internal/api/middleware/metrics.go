package middleware

import (
	"net/http"
	"sync/atomic"
)

// RequestStats counts requests by outcome.
type RequestStats struct {
	Requests     atomic.Int64
	ClientErrors atomic.Int64
	ServerErrors atomic.Int64
	InFlight     atomic.Int64
}

// MetricsCollector records every request into a RequestStats.
type MetricsCollector struct {
	stats *RequestStats
}

func NewMetricsCollector(stats *RequestStats) *MetricsCollector {
	return &MetricsCollector{stats: stats}
}

// Middleware returns middleware that counts requests and errors.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.stats.Requests.Add(1)
		mc.stats.InFlight.Add(1)
		defer mc.stats.InFlight.Add(-1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		switch {
		case rw.statusCode >= 500:
			mc.stats.ServerErrors.Add(1)
		case rw.statusCode >= 400:
			mc.stats.ClientErrors.Add(1)
		}
	})
}
