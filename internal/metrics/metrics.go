package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Download metrics
var (
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_downloads_total",
			Help: "Total number of download requests by outcome.",
		},
		[]string{"status"},
	)

	DownloadsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafetch_downloads_in_flight",
			Help: "Number of yt-dlp download processes currently running.",
		},
	)

	ProgressEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafetch_progress_events_total",
			Help: "Total number of progress events published.",
		},
	)
)

// Metadata metrics
var (
	MetadataRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_metadata_requests_total",
			Help: "Total number of metadata lookups by outcome.",
		},
		[]string{"status"},
	)
)

// yt-dlp invocation metrics
var (
	YtdlpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediafetch_ytdlp_duration_seconds",
			Help:    "Duration of yt-dlp invocations in seconds.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)
)

// Push channel metrics
var (
	SSEClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafetch_sse_clients",
			Help: "Number of connected progress subscribers.",
		},
	)
)

// Retention metrics
var (
	RetentionDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafetch_retention_deleted_total",
			Help: "Total number of completed downloads pruned by the retention cap.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		DownloadsTotal,
		DownloadsInFlight,
		ProgressEventsTotal,
		MetadataRequestsTotal,
		YtdlpDuration,
		SSEClients,
		RetentionDeletedTotal,
	)
}
