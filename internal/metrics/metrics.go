package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscout_enrichment_batch_duration_seconds",
			Help:    "Duration of each enrichment batch in seconds.",
			Buckets: []float64{1, 10, 60, 300, 900, 1800},
		},
	)
	StepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobscout_enrichment_step_duration_seconds",
			Help:       "Duration of each step in the enrichment process.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
	IngestedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_postings_ingested_total",
			Help: "Total number of new job records by source.",
		},
		[]string{"source"},
	)
	DuplicatesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_postings_duplicate_total",
			Help: "Total number of postings that were already known.",
		},
	)
	PrefilteredCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_postings_prefiltered_total",
			Help: "Total number of postings skipped by the rule-based filters.",
		},
	)
	RejectedByAiCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_jobs_ai_rejected_total",
			Help: "Total number of jobs that were rejected by AI screening.",
		},
	)
	EnrichedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_jobs_enriched_total",
			Help: "Total number of enriched jobs.",
		},
	)
	ScoredCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_jobs_scored_total",
			Help: "Total number of scored jobs.",
		},
	)
	FailedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_jobs_failed_total",
			Help: "Total number of enrichment attempts that ended in failure.",
		},
	)
)

func StartMetricsServer(address string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(BatchDuration)
	prometheus.MustRegister(StepDuration)
	prometheus.MustRegister(IngestedCounter)
	prometheus.MustRegister(DuplicatesCounter)
	prometheus.MustRegister(PrefilteredCounter)
	prometheus.MustRegister(RejectedByAiCounter)
	prometheus.MustRegister(EnrichedCounter)
	prometheus.MustRegister(ScoredCounter)
	prometheus.MustRegister(FailedCounter)

	if address == "" {
		address = ":8080"
	}

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(address, nil))
	}()
}
