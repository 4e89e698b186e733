package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are process-global and registered on the default registry through promauto.
// Every series carries the field name so several fields can share one process.

var (
	// Subdivisions counts leaves turned into internal spaces.
	Subdivisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qdf_subdivisions_total",
			Help: "Total number of spaces subdivided",
		},
		[]string{"field"},
	)

	// LeafSpaces tracks the size of the current partition.
	LeafSpaces = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "qdf_leaf_spaces",
			Help: "Number of leaf (platonic) spaces",
		},
		[]string{"field"},
	)

	// PathQueries counts path searches by outcome: found, not_found, invalid.
	PathQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qdf_path_queries_total",
			Help: "Total number of path queries",
		},
		[]string{"field", "result"},
	)

	// PathHops records the hop count of successful path searches.
	PathHops = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qdf_path_hops",
			Help:    "Number of hops of found paths",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
		[]string{"field"},
	)

	// SimulationStepDuration measures one Simulate call.
	SimulationStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qdf_simulation_step_duration_seconds",
			Help:    "Duration of a simulation step in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"field"},
	)
)

// Path query outcomes.
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
)
