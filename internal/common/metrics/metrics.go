// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	NLUPredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_predictions_total",
			Help: "Classified inputs by predicted intent",
		},
		[]string{"intent"},
	)

	NLUValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_validation_failures_total",
			Help: "Inputs whose predicted intent lacked required entities",
		},
		[]string{"intent"},
	)

	NLURouteDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_route_decisions_total",
			Help: "Chat commands by route: action, clarification or conversation",
		},
		[]string{"route"},
	)

	NLUPredictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlu_prediction_confidence",
			Help:    "Confidence of the winning intent",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	NLUTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlu_training_duration_seconds",
			Help:    "Wall time of one full model training run",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	NLUVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nlu_model_vocabulary_size",
			Help: "Vocabulary size of the model currently serving",
		},
	)
)
