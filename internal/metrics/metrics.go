package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"esp8266-web/pkg/types"
)

// Ingestion sources.
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

var ReadingsIngested = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "esp8266_readings_ingested_total",
		Help: "Readings stored, by ingestion source",
	},
	[]string{"source"},
)

var ReadingsRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "esp8266_readings_rejected_total",
		Help: "Readings refused before storage, by source and reason",
	},
	[]string{"source", "reason"},
)

var TempHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "esp8266_temperature_celsius",
		Help:    "Distribution of stored temperature readings",
		Buckets: []float64{-10, 0, 10, 15, 18, 20, 22, 24, 26, 30, 40},
	},
	[]string{"sensor"}, // co | room
)

var HumidityHistogram = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "esp8266_humidity_percent",
		Help:    "Distribution of stored humidity readings",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	},
)

var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "esp8266_http_requests_total",
		Help: "HTTP requests served",
	},
	[]string{"method", "route", "status"},
)

var HTTPDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "esp8266_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ObserveReading records a stored reading coming from source.
func ObserveReading(source string, r types.Reading) {
	ReadingsIngested.WithLabelValues(source).Inc()
	TempHistogram.WithLabelValues("co").Observe(r.TempCo)
	TempHistogram.WithLabelValues("room").Observe(r.TempRoom)
	HumidityHistogram.Observe(r.Humidity)
}
