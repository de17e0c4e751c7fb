// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// GraphSummary is the serializable projection of an import graph: the
// derived views (layers, hubs, circulars, orphans) that GapFeatures
// and the formatter consume, decoupled from the live adjacency structure.
type GraphSummary struct {
	Edges      []ImportEdge
	Layers     map[ModulePath]Layer
	Hubs       []ModulePath
	Circulars  [][2]ModulePath
	Orphans    []ModulePath
}

// CallGraphSummary is the serializable projection of the call graph.
type CallGraphSummary struct {
	Sites       []CallSite
	MostCalled  []SymbolCount
}

// SymbolCount pairs a call target symbol with its total incidence.
type SymbolCount struct {
	Symbol string
	Count  int
	Impact ImpactRating
}

// AnalysisBundle is the top-level immutable aggregate produced by the
// orchestrator. No component retains mutable state beyond its own phase;
// this is the single handoff artifact to the (out-of-scope) formatters.
type AnalysisBundle struct {
	GeneratedAt   time.Time
	ToolVersion   string
	EnabledSections map[string]bool

	Files     []FileRecord
	Classes   map[ModulePath][]ClassRecord
	Funcs     map[ModulePath][]FunctionRecord
	Constants map[ModulePath][]ConstantRecord

	ImportGraph GraphSummary
	CallGraph   CallGraphSummary

	SideEffects []SideEffect
	LogicMaps   []LogicMap

	GitRisk      []RiskEntry
	Coupling     []CouplingPair
	Freshness    []Freshness
	GitWarnings  []GitWarning

	Hazards         []Hazard
	EntryPoints     []EntryPoint
	EnvVars         []EnvVar
	Linter          LinterRules
	TestExample     *TestExample
	Pillars         []ModulePath
	MaintenanceHotspots []RiskEntry
	Prose           ProseSummary
	Personas        []PersonaExcerpt

	TestCoverage TestCoverageResult
	TechDebt     []TechDebtMarker

	TotalFiles      int
	ParsedFiles     int
	SyntaxErrorFiles int
	UnreadableFiles int
}
