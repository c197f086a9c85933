// Package metrics exposes Prometheus collectors for graph builds and the
// layout simulator. Collectors are registered with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Build outcomes used as the "outcome" label of BuildsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
	OutcomeDiscard  = "discarded"
)

var (
	// BuildsTotal counts build attempts by outcome.
	BuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipemap_builds_total",
			Help: "Total number of graph builds by outcome",
		},
		[]string{"outcome"},
	)

	// BuildDuration observes wall time of completed builds.
	BuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipemap_build_duration_seconds",
			Help:    "Duration of graph builds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// IngestSkippedTotal counts rules skipped during ingestion.
	IngestSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipemap_ingest_skipped_total",
			Help: "Total number of host rules skipped during ingestion",
		},
	)

	// EdgesRemovedTotal counts edges dropped by the validator.
	EdgesRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipemap_edges_removed_total",
			Help: "Total number of edges removed by validation",
		},
		[]string{"reason"},
	)

	// Edges tracks the edge count of the latest snapshot per kind.
	Edges = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipemap_edges",
			Help: "Number of edges in the latest snapshot",
		},
		[]string{"kind"},
	)

	// Nodes tracks the node count of the latest snapshot.
	Nodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipemap_nodes",
			Help: "Number of rule nodes in the latest snapshot",
		},
	)

	// LayoutEnergy tracks the kinetic energy after the last layout step.
	LayoutEnergy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipemap_layout_energy",
			Help: "Kinetic energy of the layout after the last step",
		},
	)

	// LayoutStepsTotal counts layout steps.
	LayoutStepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipemap_layout_steps_total",
			Help: "Total number of layout simulation steps",
		},
	)
)

func init() {
	prometheus.MustRegister(BuildsTotal)
	prometheus.MustRegister(BuildDuration)
	prometheus.MustRegister(IngestSkippedTotal)
	prometheus.MustRegister(EdgesRemovedTotal)
	prometheus.MustRegister(Edges)
	prometheus.MustRegister(Nodes)
	prometheus.MustRegister(LayoutEnergy)
	prometheus.MustRegister(LayoutStepsTotal)
}
