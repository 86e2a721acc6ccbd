package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PDFExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "pdf_exports_total", Help: "Number of PDF export requests by outcome status code."},
		[]string{"status"},
	)
	PDFExportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "scrapbook", Name: "pdf_export_duration_seconds", Help: "Wall time of one PDF export request.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300}},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(PDFExports)
	reg.MustRegister(PDFExportDuration)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
