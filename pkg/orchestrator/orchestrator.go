// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator drives every component over one target directory and
// assembles the immutable AnalysisBundle. FileDiscovery runs first since
// every other component's input is a function of its FileRecord list; the
// AstAnalyzer fan-out is a bounded worker pool (errgroup.Group.SetLimit)
// since it is the only embarrassingly-parallel phase, and everything
// downstream of it (graph construction, ranking, GapFeatures) runs on
// the calling goroutine over the now-immutable per-file results (§5).
// Run's phases are laid out sequentially, each commented with what it
// consumes and produces, so the pipeline reads top to bottom.
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/pyxray/internal/logging"
	"github.com/kraklabs/pyxray/internal/metrics"
	"github.com/kraklabs/pyxray/pkg/callgraph"
	"github.com/kraklabs/pyxray/pkg/discovery"
	"github.com/kraklabs/pyxray/pkg/gapfeatures"
	"github.com/kraklabs/pyxray/pkg/gitanalysis"
	"github.com/kraklabs/pyxray/pkg/hotspots"
	"github.com/kraklabs/pyxray/pkg/importgraph"
	"github.com/kraklabs/pyxray/pkg/model"
	"github.com/kraklabs/pyxray/pkg/pyast"
	"github.com/kraklabs/pyxray/pkg/sideeffect"
	"github.com/kraklabs/pyxray/pkg/techdebt"
	"github.com/kraklabs/pyxray/pkg/testcoverage"
)

// DefaultToolVersion is stamped into AnalysisBundle.ToolVersion when the
// caller never set one.
const DefaultToolVersion = "dev"

// Orchestrator wires FileDiscovery, AstAnalyzer, the graph/ranking
// components, GitAnalyzer, and GapFeatures into one analyze() call.
type Orchestrator struct {
	logger      *slog.Logger
	maxWorkers  int
	toolVersion string
	now         time.Time

	discoveryOpts []discovery.Option
	pyastOpts     []pyast.Option
	importOpts    []importgraph.Option
	gitOpts       []gitanalysis.Option
	hotspotOpts   hotspots.Options

	pillarCount          int
	hotspotCount         int
	hazardTokenThreshold int64

	enabledSections map[string]bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger; nil falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logging.Default(logger) }
}

// WithMaxWorkers bounds the AstAnalyzer fan-out's concurrency. n <= 0
// falls back to runtime.NumCPU().
func WithMaxWorkers(n int) Option {
	return func(o *Orchestrator) { o.maxWorkers = n }
}

// WithToolVersion stamps AnalysisBundle.ToolVersion.
func WithToolVersion(v string) Option {
	return func(o *Orchestrator) { o.toolVersion = v }
}

// WithNow fixes AnalysisBundle.GeneratedAt, for deterministic tests. Zero
// value (the default) means Run stamps time.Now() at call time.
func WithNow(t time.Time) Option {
	return func(o *Orchestrator) { o.now = t }
}

// WithDiscoveryOptions forwards options to pkg/discovery.New.
func WithDiscoveryOptions(opts ...discovery.Option) Option {
	return func(o *Orchestrator) { o.discoveryOpts = append(o.discoveryOpts, opts...) }
}

// WithPyastOptions forwards options to pkg/pyast.New.
func WithPyastOptions(opts ...pyast.Option) Option {
	return func(o *Orchestrator) { o.pyastOpts = append(o.pyastOpts, opts...) }
}

// WithImportGraphOptions forwards options to pkg/importgraph.Build.
func WithImportGraphOptions(opts ...importgraph.Option) Option {
	return func(o *Orchestrator) { o.importOpts = append(o.importOpts, opts...) }
}

// WithGitOptions forwards options to pkg/gitanalysis.New.
func WithGitOptions(opts ...gitanalysis.Option) Option {
	return func(o *Orchestrator) { o.gitOpts = append(o.gitOpts, opts...) }
}

// WithHotspotOptions overrides pkg/hotspots' rendering options.
func WithHotspotOptions(opts hotspots.Options) Option {
	return func(o *Orchestrator) { o.hotspotOpts = opts }
}

// WithPillarCount overrides GapFeatures' Pillars top-K.
func WithPillarCount(n int) Option {
	return func(o *Orchestrator) { o.pillarCount = n }
}

// WithHotspotCount overrides GapFeatures' MaintenanceHotspots top-K.
func WithHotspotCount(n int) Option {
	return func(o *Orchestrator) { o.hotspotCount = n }
}

// WithHazardTokenThreshold overrides GapFeatures' Hazards token-size cutoff.
func WithHazardTokenThreshold(n int64) Option {
	return func(o *Orchestrator) { o.hazardTokenThreshold = n }
}

// WithEnabledSections stamps AnalysisBundle.EnabledSections, the record of
// which sections a config/CLI layer asked for. It does not skip any
// pipeline phase: every component always runs so its output is available
// for any later formatter to select from.
func WithEnabledSections(sections map[string]bool) Option {
	return func(o *Orchestrator) { o.enabledSections = sections }
}

// New builds an Orchestrator with package defaults plus any options.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:       slog.Default(),
		maxWorkers:   runtime.NumCPU(),
		toolVersion:  DefaultToolVersion,
		pillarCount:  gapfeatures.DefaultPillarCount,
		hotspotCount: gapfeatures.DefaultHotspotCount,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxWorkers <= 0 {
		o.maxWorkers = runtime.NumCPU()
	}
	return o
}

// fileOutcome is one file's AstAnalyzer result plus its raw source, kept
// together so the aggregation pass below can read both by index without
// a second disk read.
type fileOutcome struct {
	result  *pyast.FileResult
	content string
}

// Run executes the full pipeline against target and returns the assembled
// AnalysisBundle. A failure to even discover the target tree aborts the
// run; every later phase degrades to partial or empty output rather than
// aborting (GitAnalyzer's independent-pass design, §4.7; a single file's
// parse failure only affects that file, §4.2).
func (o *Orchestrator) Run(ctx context.Context, target string) (*model.AnalysisBundle, error) {
	start := time.Now()
	defer func() { metrics.Registered().ObserveTotal(time.Since(start).Seconds()) }()

	disc := discovery.New(o.discoveryOpts...)
	discStart := time.Now()
	discResult, err := disc.Walk(target)
	metrics.Registered().ObserveDiscovery(time.Since(discStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	files := discResult.Files

	parseStart := time.Now()
	classes, funcs, constants, imports, callSites, flowEvents, contents, parsed, syntaxErrs, unreadable := o.analyzeFiles(ctx, files)
	metrics.Registered().ObserveParse(time.Since(parseStart).Seconds())
	metrics.Registered().FilesParsed(parsed)
	metrics.Registered().FilesSyntaxError(syntaxErrs)

	fileOfModule := make(map[model.ModulePath]string, len(files))
	entryNames := map[model.ModulePath]bool{}
	var testFiles []model.FileRecord
	for _, f := range files {
		fileOfModule[f.Module] = f.RelPath
		if f.IsEntryName {
			entryNames[f.Module] = true
		}
		if isTestFileName(f.RelPath) {
			testFiles = append(testFiles, f)
		}
	}
	fileOf := func(m model.ModulePath) string {
		if p, ok := fileOfModule[m]; ok {
			return p
		}
		return string(m)
	}

	graphStart := time.Now()
	graph := importgraph.Build(files, imports, o.importOpts...)
	importSummary := graph.Summarize(entryNames)
	metrics.Registered().ImportEdges(len(importSummary.Edges))

	aliases := callgraph.AliasesFromEdges(importSummary.Edges)
	callSummary := callgraph.Build(callSites, aliases).Summarize()
	metrics.Registered().CallSites(len(callSummary.Sites))

	effects := sideeffect.Detect(callSites, fileOf)
	metrics.Registered().SideEffects(len(effects))

	logicMaps := hotspots.Build(hotspots.Input{
		Classes:     classes,
		Funcs:       funcs,
		FlowEvents:  flowEvents,
		SideEffects: effects,
		FileOf:      fileOf,
	}, o.hotspotOpts)
	metrics.Registered().ObserveGraph(time.Since(graphStart).Seconds())

	gitStart := time.Now()
	gitResult := gitanalysis.New(discResult.Root, o.gitOpts...).Run(ctx)
	metrics.Registered().ObserveGit(time.Since(gitStart).Seconds())
	for _, w := range gitResult.Warnings {
		if w.Kind == "timeout" {
			metrics.Registered().GitTimeout()
		} else {
			metrics.Registered().GitUnavailable()
		}
	}

	gapStart := time.Now()
	read := func(f model.FileRecord) (string, error) {
		text, ok := contents[f.RelPath]
		if !ok {
			return "", fmt.Errorf("no content cached for %s", f.RelPath)
		}
		return text, nil
	}
	gap := gapfeatures.Build(gapfeatures.Input{
		Root:                 discResult.Root,
		Files:                files,
		TestFiles:            testFiles,
		Classes:              classes,
		Layers:               importSummary.Layers,
		Imports:              importSummary.Edges,
		GitRisk:              gitResult.Risk,
		PillarCount:          o.pillarCount,
		HotspotCount:         o.hotspotCount,
		HazardTokenThreshold: o.hazardTokenThreshold,
		Read:                 read,
	})
	coverage := testcoverage.Build(files, read)
	debt := techdebt.Scan(files, read)
	metrics.Registered().TechDebtMarkers(len(debt))
	metrics.Registered().ObserveGapFeatures(time.Since(gapStart).Seconds())

	generatedAt := o.now
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	sections := o.enabledSections
	if sections == nil {
		sections = defaultEnabledSections()
	}

	o.logger.Info("orchestrator.run.complete",
		"root", discResult.Root,
		"files", len(files),
		"parsed", parsed,
		"syntax_errors", syntaxErrs,
		"unreadable", unreadable,
	)

	return &model.AnalysisBundle{
		GeneratedAt:     generatedAt,
		ToolVersion:     o.toolVersion,
		EnabledSections: sections,

		Files:     files,
		Classes:   classes,
		Funcs:     funcs,
		Constants: constants,

		ImportGraph: importSummary,
		CallGraph:   callSummary,

		SideEffects: effects,
		LogicMaps:   logicMaps,

		GitRisk:     gitResult.Risk,
		Coupling:    gitResult.Coupling,
		Freshness:   gitResult.Freshness,
		GitWarnings: gitResult.Warnings,

		Hazards:             gap.Hazards,
		EntryPoints:         gap.EntryPoints,
		EnvVars:             gap.EnvVars,
		Linter:              gap.Linter,
		TestExample:         gap.TestExample,
		Pillars:             gap.Pillars,
		MaintenanceHotspots: gap.Hotspots,
		Prose:               gap.Prose,
		Personas:            gap.Personas,

		TestCoverage: coverage,
		TechDebt:     debt,

		TotalFiles:       len(files),
		ParsedFiles:      parsed,
		SyntaxErrorFiles: syntaxErrs,
		UnreadableFiles:  unreadable,
	}, nil
}

// analyzeFiles runs AstAnalyzer over every readable file with a bounded
// worker pool and aggregates the per-file results into the module-keyed
// maps the graph components need. A file's own read/parse failure only
// marks that one FileRecord unreadable; it never aborts the pool.
func (o *Orchestrator) analyzeFiles(ctx context.Context, files []model.FileRecord) (
	classes map[model.ModulePath][]model.ClassRecord,
	funcs map[model.ModulePath][]model.FunctionRecord,
	constants map[model.ModulePath][]model.ConstantRecord,
	imports map[model.ModulePath][]pyast.ImportRef,
	callSites []model.CallSite,
	flowEvents map[model.ModulePath]map[string][]pyast.FlowEvent,
	contents map[string]string,
	parsed, syntaxErrs, unreadableCount int,
) {
	analyzer := pyast.New(o.pyastOpts...)
	outcomes := make([]fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	for i := range files {
		i := i
		f := files[i]
		if f.ParseStatus == model.ParseStatusUnreadable {
			continue
		}
		g.Go(func() error {
			raw, readErr := os.ReadFile(f.AbsPath)
			if readErr != nil {
				files[i].ParseStatus = model.ParseStatusUnreadable
				o.logger.Warn("orchestrator.analyze.read_error", "path", f.RelPath, "err", readErr)
				return nil
			}
			files[i].LineCount = bytes.Count(raw, []byte("\n")) + 1

			result, analyzeErr := analyzer.AnalyzeFile(gctx, f.Module, raw)
			if analyzeErr != nil {
				files[i].ParseStatus = model.ParseStatusUnreadable
				o.logger.Warn("orchestrator.analyze.unreadable", "path", f.RelPath, "err", analyzeErr)
				return nil
			}
			// AstAnalyzer tolerates syntax errors and still walks what it
			// can (result.ParseStatus stays "parsed"); the bundle-level
			// status promotes HasSyntaxError to its own category so
			// SyntaxErrorFiles is a real count rather than always zero.
			status := result.ParseStatus
			if result.HasSyntaxError {
				status = model.ParseStatusSyntaxError
			}
			files[i].ParseStatus = status
			outcomes[i] = fileOutcome{result: result, content: string(raw)}
			return nil
		})
	}
	// g.Wait's error is always nil: every g.Go above handles its own
	// failure by tagging the FileRecord rather than returning an error,
	// so one file's failure never cancels the rest of the pool.
	_ = g.Wait()

	classes = map[model.ModulePath][]model.ClassRecord{}
	funcs = map[model.ModulePath][]model.FunctionRecord{}
	constants = map[model.ModulePath][]model.ConstantRecord{}
	imports = map[model.ModulePath][]pyast.ImportRef{}
	flowEvents = map[model.ModulePath]map[string][]pyast.FlowEvent{}
	contents = map[string]string{}

	for i, f := range files {
		switch f.ParseStatus {
		case model.ParseStatusParsed:
			parsed++
		case model.ParseStatusSyntaxError:
			syntaxErrs++
		default:
			unreadableCount++
		}

		out := outcomes[i]
		if out.result == nil {
			continue
		}
		contents[f.RelPath] = out.content
		if len(out.result.Classes) > 0 {
			classes[f.Module] = out.result.Classes
		}
		if len(out.result.Funcs) > 0 {
			funcs[f.Module] = out.result.Funcs
		}
		if len(out.result.Constants) > 0 {
			constants[f.Module] = out.result.Constants
		}
		if len(out.result.Imports) > 0 {
			imports[f.Module] = out.result.Imports
		}
		if len(out.result.FlowEvents) > 0 {
			flowEvents[f.Module] = out.result.FlowEvents
		}
		callSites = append(callSites, out.result.CallSites...)
	}

	sort.Slice(callSites, func(i, j int) bool {
		if callSites[i].Source != callSites[j].Source {
			return callSites[i].Source < callSites[j].Source
		}
		return callSites[i].Line < callSites[j].Line
	})

	return classes, funcs, constants, imports, callSites, flowEvents, contents, parsed, syntaxErrs, unreadableCount
}

// isTestFileName reports whether a discovered file's base name matches
// the test_*/ *_test.py conventions folded into FileRecord.IsEntryName,
// the subset GapFeatures' Rosetta-Stone selection scans over.
func isTestFileName(relPath string) bool {
	base := relPath
	if idx := strings.LastIndexByte(relPath, '/'); idx >= 0 {
		base = relPath[idx+1:]
	}
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")
}

// defaultEnabledSections lists every section this orchestrator always
// computes; a config layer narrows this map to what a formatter should
// actually render without changing what gets computed.
func defaultEnabledSections() map[string]bool {
	return map[string]bool{
		"files":         true,
		"import_graph":  true,
		"call_graph":    true,
		"side_effects":  true,
		"logic_maps":    true,
		"git":           true,
		"gap_features":  true,
		"test_coverage": true,
		"tech_debt":     true,
	}
}
