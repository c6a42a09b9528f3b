package dispatch

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for request outcomes.
const (
	outcomeOK               = "ok"
	outcomeAccepted         = "accepted"
	outcomeCompileError     = "compile_error"
	outcomeProgramNotFound  = "program_not_found"
	outcomeFunctionNotFound = "function_not_found"
	outcomeResultMismatch   = "result_mismatch"
	outcomeArgumentMismatch = "argument_mismatch"
	outcomeDeviceNotFound   = "device_not_found"
	outcomeTypeMismatch     = "type_mismatch"
	outcomeKernelError      = "kernel_error"
)

var (
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessera_registrations_total",
			Help: "Total number of program registration requests handled.",
		},
		[]string{"outcome"},
	)

	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessera_executions_total",
			Help: "Total number of execute requests completed.",
		},
		[]string{"outcome"},
	)

	executionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tessera_execution_duration_seconds",
			Help:    "Duration from execute request receipt to completion callback, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	compileCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tessera_compile_cache_hits_total",
			Help: "Registrations served from the source-hash compile cache.",
		},
	)
)

func init() {
	prometheus.MustRegister(registrationsTotal)
	prometheus.MustRegister(executionsTotal)
	prometheus.MustRegister(executionDuration)
	prometheus.MustRegister(compileCacheHits)

	// Pre-initialize counter label combinations so they appear in /metrics
	// with value 0 from startup, rather than only after first observation.
	for _, outcome := range []string{outcomeAccepted, outcomeCompileError} {
		registrationsTotal.WithLabelValues(outcome)
	}
	for _, outcome := range []string{
		outcomeOK, outcomeProgramNotFound, outcomeFunctionNotFound,
		outcomeResultMismatch, outcomeArgumentMismatch,
		outcomeDeviceNotFound, outcomeTypeMismatch, outcomeKernelError,
	} {
		executionsTotal.WithLabelValues(outcome)
	}
}
