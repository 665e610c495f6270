package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vofc",
		Subsystem: "api",
		Name:      "submissions_created_total",
		Help:      "Submissions created through the API, by type.",
	}, []string{"type"})

	reviewDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vofc",
		Subsystem: "api",
		Name:      "review_decisions_total",
		Help:      "Review decisions applied, by action.",
	}, []string{"action"})

	documentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vofc",
		Subsystem: "api",
		Name:      "documents_processed_total",
		Help:      "Document extraction runs, by resulting status.",
	}, []string{"status"})
)
