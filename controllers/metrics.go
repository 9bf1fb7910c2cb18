package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	lisaControllerReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lisa_controller_reconcile_total",
			Help: "Number of reconciliations by controller.",
		},
		[]string{"controller"},
	)
	lisaControllerReconcileErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lisa_controller_reconcile_error_total",
			Help: "Number of reconciliation errors by controller.",
		},
		[]string{"controller"},
	)

	environmentMatcherRejectedPlatforms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lisa_environmentmatcher_rejected_platforms",
			Help: "Number of platforms rejected in the last EnvironmentMatcher reconcile.",
		},
	)
	environmentMatcherResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lisa_environmentmatcher_results_total",
			Help: "Number of EnvironmentMatcher reconciles by resulting phase.",
		},
		[]string{"phase"},
	)

	environmentMatcherBindingsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lisa_environmentmatcher_bindings_created_total",
			Help: "Total number of EnvironmentBindings created by EnvironmentMatcher.",
		},
	)
	environmentMatcherBindingsUpdatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lisa_environmentmatcher_bindings_updated_total",
			Help: "Total number of EnvironmentBindings updated by EnvironmentMatcher.",
		},
	)
	environmentMatcherBindingsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lisa_environmentmatcher_bindings_deleted_total",
			Help: "Total number of EnvironmentBindings deleted by EnvironmentMatcher.",
		},
	)

	environmentMatcherMatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lisa_environmentmatcher_match_duration_seconds",
			Help:    "Time taken to match an environment against the platforms in its namespace.",
			Buckets: prometheus.DefBuckets,
		},
	)

	platformInvalidTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lisa_platform_invalid_total",
			Help: "Number of Platform reconciles that found an invalid capability.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		lisaControllerReconcileTotal,
		lisaControllerReconcileErrorTotal,
		environmentMatcherRejectedPlatforms,
		environmentMatcherResultsTotal,
		environmentMatcherBindingsCreatedTotal,
		environmentMatcherBindingsUpdatedTotal,
		environmentMatcherBindingsDeletedTotal,
		environmentMatcherMatchDuration,
		platformInvalidTotal,
	)
}
