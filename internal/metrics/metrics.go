// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters and histograms for the
// analysis pipeline's phases: a sync.Once-guarded package-level
// registry, pyxray_-prefixed metric names, and duration histograms. Registration
// happens once regardless of how many analyzer instances are
// constructed within a process.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// pipelineMetrics holds the metrics for every phase of analyze().
type pipelineMetrics struct {
	once sync.Once

	filesDiscovered prometheus.Counter
	filesUnreadable prometheus.Counter

	filesParsed      prometheus.Counter
	filesSyntaxError prometheus.Counter

	importEdges    prometheus.Counter
	callSites      prometheus.Counter
	sideEffects    prometheus.Counter
	techDebtMarkers prometheus.Counter

	gitCommitsSeen prometheus.Counter
	gitTimeouts    prometheus.Counter
	gitUnavailable prometheus.Counter

	discoveryDuration  prometheus.Histogram
	parseDuration      prometheus.Histogram
	graphDuration      prometheus.Histogram
	gitDuration        prometheus.Histogram
	gapFeaturesDuration prometheus.Histogram
	totalDuration      prometheus.Histogram
}

var pipeline pipelineMetrics

func (m *pipelineMetrics) init() {
	m.once.Do(func() {
		m.filesDiscovered = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_files_discovered_total", Help: "Source files discovered by FileDiscovery"})
		m.filesUnreadable = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_files_unreadable_total", Help: "Files that failed to read"})

		m.filesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_files_parsed_total", Help: "Files successfully parsed"})
		m.filesSyntaxError = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_files_syntax_error_total", Help: "Files that failed to parse"})

		m.importEdges = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_import_edges_total", Help: "Import edges extracted across all files"})
		m.callSites = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_call_sites_total", Help: "Call sites extracted across all files"})
		m.sideEffects = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_side_effects_total", Help: "Call sites classified as side effects"})
		m.techDebtMarkers = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_tech_debt_markers_total", Help: "TODO/FIXME/HACK/XXX/BUG markers found"})

		m.gitCommitsSeen = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_git_commits_seen_total", Help: "Commits observed across the three git log passes"})
		m.gitTimeouts = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_git_timeouts_total", Help: "Git invocations that exceeded the wall-clock bound"})
		m.gitUnavailable = prometheus.NewCounter(prometheus.CounterOpts{Name: "pyxray_git_unavailable_total", Help: "Runs where git was unavailable or the target was not a repository"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
		m.discoveryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "pyxray_discovery_seconds", Help: "Duration of FileDiscovery", Buckets: buckets})
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "pyxray_parse_seconds", Help: "Duration of the AST analysis fan-out", Buckets: buckets})
		m.graphDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "pyxray_graph_seconds", Help: "Duration of import/call graph aggregation", Buckets: buckets})
		m.gitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "pyxray_git_seconds", Help: "Duration of the git-history analysis passes", Buckets: buckets})
		m.gapFeaturesDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "pyxray_gap_features_seconds", Help: "Duration of GapFeatures aggregation", Buckets: buckets})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "pyxray_total_seconds", Help: "Duration of a full analyze() run", Buckets: buckets})

		prometheus.MustRegister(
			m.filesDiscovered, m.filesUnreadable,
			m.filesParsed, m.filesSyntaxError,
			m.importEdges, m.callSites, m.sideEffects, m.techDebtMarkers,
			m.gitCommitsSeen, m.gitTimeouts, m.gitUnavailable,
			m.discoveryDuration, m.parseDuration, m.graphDuration, m.gitDuration, m.gapFeaturesDuration, m.totalDuration,
		)
	})
}

// Registered ensures the package's metrics are registered with the default
// Prometheus registry and returns the shared instance. Safe to call from
// multiple goroutines or multiple analyzer instances.
func Registered() *pipelineMetrics {
	pipeline.init()
	return &pipeline
}

func (m *pipelineMetrics) FilesDiscovered(n int)  { m.init(); m.filesDiscovered.Add(float64(n)) }
func (m *pipelineMetrics) FilesUnreadable(n int)  { m.init(); m.filesUnreadable.Add(float64(n)) }
func (m *pipelineMetrics) FilesParsed(n int)      { m.init(); m.filesParsed.Add(float64(n)) }
func (m *pipelineMetrics) FilesSyntaxError(n int) { m.init(); m.filesSyntaxError.Add(float64(n)) }
func (m *pipelineMetrics) ImportEdges(n int)      { m.init(); m.importEdges.Add(float64(n)) }
func (m *pipelineMetrics) CallSites(n int)        { m.init(); m.callSites.Add(float64(n)) }
func (m *pipelineMetrics) SideEffects(n int)      { m.init(); m.sideEffects.Add(float64(n)) }
func (m *pipelineMetrics) TechDebtMarkers(n int)  { m.init(); m.techDebtMarkers.Add(float64(n)) }
func (m *pipelineMetrics) GitCommitsSeen(n int)   { m.init(); m.gitCommitsSeen.Add(float64(n)) }
func (m *pipelineMetrics) GitTimeout()            { m.init(); m.gitTimeouts.Inc() }
func (m *pipelineMetrics) GitUnavailable()        { m.init(); m.gitUnavailable.Inc() }

func (m *pipelineMetrics) ObserveDiscovery(seconds float64)   { m.init(); m.discoveryDuration.Observe(seconds) }
func (m *pipelineMetrics) ObserveParse(seconds float64)       { m.init(); m.parseDuration.Observe(seconds) }
func (m *pipelineMetrics) ObserveGraph(seconds float64)       { m.init(); m.graphDuration.Observe(seconds) }
func (m *pipelineMetrics) ObserveGit(seconds float64)         { m.init(); m.gitDuration.Observe(seconds) }
func (m *pipelineMetrics) ObserveGapFeatures(seconds float64) { m.init(); m.gapFeaturesDuration.Observe(seconds) }
func (m *pipelineMetrics) ObserveTotal(seconds float64)       { m.init(); m.totalDuration.Observe(seconds) }
