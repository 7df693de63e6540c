package pb

import "github.com/prometheus/client_golang/prometheus"

// Stats accumulates the counters spec.md §6 asks the plugin to expose:
// conflicts raised, propagations performed, constraints created, and
// sorting-network compilation activity. Fields are plain ints for cheap
// hot-path increments; NewCollector exposes them as a prometheus.Collector
// the way OLM and AleutianLocal both wire client_golang collectors.
type Stats struct {
	Conflicts               int
	Propagations            int
	ConstraintsCreated      int
	Compilations            int
	CompiledClauses         int
	CompiledVars            int
	CompilationSkippedOverflow int // spec.md §9 supplemented feature 2
}

// Collector adapts Stats to prometheus.Collector so a running solver can be
// scraped without the pb package importing an HTTP server itself.
type Collector struct {
	stats *Stats

	conflicts, propagations, constraints, compilations,
	compiledClauses, compiledVars, skippedOverflow *prometheus.Desc
}

// NewCollector returns a prometheus.Collector reading live from stats.
func NewCollector(stats *Stats) *Collector {
	ns := "gopb"
	return &Collector{
		stats:           stats,
		conflicts:       prometheus.NewDesc(ns+"_pb_conflicts_total", "PB conflicts raised", nil, nil),
		propagations:    prometheus.NewDesc(ns+"_pb_propagations_total", "PB unit propagations performed", nil, nil),
		constraints:     prometheus.NewDesc(ns+"_pb_constraints_created_total", "PB constraints internalized", nil, nil),
		compilations:    prometheus.NewDesc(ns+"_pb_compilations_total", "PB constraints compiled to a sorting network", nil, nil),
		compiledClauses: prometheus.NewDesc(ns+"_pb_compiled_clauses_total", "CNF clauses emitted by the sorting-network compiler", nil, nil),
		compiledVars:    prometheus.NewDesc(ns+"_pb_compiled_vars_total", "auxiliary variables introduced by the sorting-network compiler", nil, nil),
		skippedOverflow: prometheus.NewDesc(ns+"_pb_compilation_skipped_overflow_total", "compilations skipped because the coefficient sum would overflow", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.conflicts
	ch <- c.propagations
	ch <- c.constraints
	ch <- c.compilations
	ch <- c.compiledClauses
	ch <- c.compiledVars
	ch <- c.skippedOverflow
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.conflicts, prometheus.CounterValue, float64(c.stats.Conflicts))
	ch <- prometheus.MustNewConstMetric(c.propagations, prometheus.CounterValue, float64(c.stats.Propagations))
	ch <- prometheus.MustNewConstMetric(c.constraints, prometheus.CounterValue, float64(c.stats.ConstraintsCreated))
	ch <- prometheus.MustNewConstMetric(c.compilations, prometheus.CounterValue, float64(c.stats.Compilations))
	ch <- prometheus.MustNewConstMetric(c.compiledClauses, prometheus.CounterValue, float64(c.stats.CompiledClauses))
	ch <- prometheus.MustNewConstMetric(c.compiledVars, prometheus.CounterValue, float64(c.stats.CompiledVars))
	ch <- prometheus.MustNewConstMetric(c.skippedOverflow, prometheus.CounterValue, float64(c.stats.CompilationSkippedOverflow))
}
