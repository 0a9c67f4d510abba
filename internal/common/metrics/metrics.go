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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	StepsCompiled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_steps_compiled_total",
			Help: "Total number of generation steps compiled, by step type and route",
		},
		[]string{"step_type", "route"},
	)

	StepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_step_failures_total",
			Help: "Total number of failed step compilations, by error code",
		},
		[]string{"error_code"},
	)

	StepCompileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_step_compile_duration_seconds",
			Help:    "Duration of step compilation in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"route"},
	)

	WorkflowTemplateLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_template_lookups_total",
			Help: "Workflow template lookups by the layer that served them (local, redis, miss)",
		},
		[]string{"source"},
	)

	ResourceNodesSynthesized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_graph_nodes_synthesized_total",
			Help: "Total number of resource loader nodes spliced into workflow graphs",
		},
	)
)
