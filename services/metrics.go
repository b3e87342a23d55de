package services

import "github.com/prometheus/client_golang/prometheus"

var (
	autosaveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapbook_autosave_row_failures_total",
			Help: "Autosave rows that could not be written",
		},
		[]string{"kind"},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapbook_exports_total",
			Help: "Export configurations built, by format",
		},
		[]string{"format"},
	)
	likesToggled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapbook_likes_toggled_total",
			Help: "Like toggles, by resulting state",
		},
		[]string{"state"},
	)
)

// InitPrometheus registers the domain counters. Call it once from main.
func InitPrometheus() {
	prometheus.MustRegister(autosaveFailures)
	prometheus.MustRegister(exportsTotal)
	prometheus.MustRegister(likesToggled)
}
