package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	clientRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dairyflow_client_requests_total",
		Help: "API requests sent by the client, including retries",
	}, []string{"method", "status"})
	clientLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dairyflow_client_request_duration_seconds",
		Help:    "Latency of API requests sent by the client",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	clientRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dairyflow_client_token_refresh_total",
		Help: "Access token refresh attempts by result",
	}, []string{"result"})

	serverRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dairyflow_mock_http_requests_total",
		Help: "Requests served by the mock backend",
	}, []string{"method", "route", "status"})
)

// ClientObserver records client pipeline activity. It satisfies
// client.Observer.
type ClientObserver struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

func NewClientObserver() *ClientObserver {
	return &ClientObserver{
		requests:  clientRequests,
		latency:   clientLatency,
		refreshes: clientRefreshes,
	}
}

func (o *ClientObserver) ObserveRequest(method, status string, d time.Duration) {
	o.requests.WithLabelValues(method, status).Inc()
	o.latency.WithLabelValues(method).Observe(d.Seconds())
}

func (o *ClientObserver) RecordRefresh(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	o.refreshes.WithLabelValues(result).Inc()
}

// RecordServerRequest counts one request handled by the mock backend.
func RecordServerRequest(method, route string, status int) {
	serverRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
