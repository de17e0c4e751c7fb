// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// FileRecord is produced exactly once per discovered source file and is
// owned exclusively by FileDiscovery; every downstream analyzer receives a
// read-only view. Every file referenced by any other record in a run is
// present here.
type FileRecord struct {
	AbsPath     string
	RelPath     string
	ByteLength  int64
	LineCount   int
	TokenEst    int64 // bytes / 4
	Module      ModulePath
	ParseStatus ParseStatus

	// IsEntryName is true when the file's base name matches one of the
	// fixed entry-point names (main.py, __main__.py, cli.py, ...) or the
	// test_*/  *_test.py conventions (§4.1, §4.3 orphan exemption).
	IsEntryName bool
}

// Param is a single function/method parameter.
type Param struct {
	Name       string
	Annotation string // source text of the type annotation, or ""
	Default    string // source text of the default value, or ""
}

// PydanticFieldConstraint is a single keyword argument passed to a
// pydantic.Field(...) call, e.g. {"gt": "0"} or {"max_length": "255"}.
type PydanticFieldConstraint struct {
	Key   string
	Value string
}

// FieldRecord is a class-level annotated assignment or a `self.x = ...`
// assignment lifted from __init__.
type FieldRecord struct {
	Name        string
	Annotation  string
	Default     string // truncated source text of the RHS expression
	Source      FieldSource
	Constraints []PydanticFieldConstraint // non-empty only for pydantic.Field(...) defaults
}

// MethodRecord describes one method of a class.
type MethodRecord struct {
	Name          string
	Line          int
	Params        []Param
	ReturnAnnot   string
	IsAsync       bool
	Decorators    []string
	DocFirstLine  string
	Complexity    int // cyclomatic complexity, >= 1
}

// FunctionRecord describes one module-level (or nested) function.
type FunctionRecord struct {
	Name         string
	Line         int
	Params       []Param
	ReturnAnnot  string
	IsAsync      bool
	Decorators   []string
	DocFirstLine string
	Complexity   int
	IsNested     bool
}

// ClassRecord describes a class declaration and its members.
type ClassRecord struct {
	Name         string
	Line         int
	Bases        []string // source text of declared base classes
	Decorators   []string
	DocFirstLine string
	Methods      []MethodRecord
	Fields       []FieldRecord
	Kind         ModelKind
}

// ConstantRecord is a module-level upper-case-named assignment, part of
// the skeleton alongside classes and functions (§4.2).
type ConstantRecord struct {
	Name  string
	Line  int
	Value string // truncated source text of the right-hand side
}

// ImportEdge is a directed module -> module dependency.
type ImportEdge struct {
	Source ModulePath
	Target ModulePath
	Kind   ImportKind
	Alias  string // "" when the import has no alias
}

// CallSiteKind distinguishes how the callee was written syntactically.
type CallSiteKind string

const (
	CallSiteNameCall      CallSiteKind = "name_call"      // foo(...)
	CallSiteAttributeCall CallSiteKind = "attribute_call"  // obj.foo(...)
	CallSiteSubscriptCall CallSiteKind = "subscript_call"  // REGISTRY[key](...)
)

// CallSite is one call expression found during AST analysis. The engine
// never resolves an ambiguous target to a definition; the raw textual
// symbol as written is retained.
type CallSite struct {
	Source          ModulePath
	ContainingFunc  string
	Target          string // dotted textual symbol, e.g. "requests.post"
	Line            int
	Kind            CallSiteKind
	CrossModule     bool
}

// GitStats is the per-file aggregate produced by the git risk-window pass.
type GitStats struct {
	RelPath         string
	CommitsInWindow int
	HotfixCommits   int
	Authors         map[string]struct{}
	LastCommit      time.Time
	HasLastCommit   bool
}

// AuthorCount returns the distinct-author count, capped nowhere (the cap
// to 5 happens only in the risk-score formula).
func (g *GitStats) AuthorCount() int {
	if g.Authors == nil {
		return 0
	}
	return len(g.Authors)
}

// RiskEntry pairs a file with its computed RiskScore (a float in [0,1]).
type RiskEntry struct {
	RelPath string
	Score   float64
	Churn   int
	Hotfix  int
	Authors int
}

// CouplingPair is an unordered pair of files that co-changed at least
// three times in the recent-commit sample, excluding commits touching
// more than 20 files.
type CouplingPair struct {
	A, B  string
	Count int
}

// Freshness pairs a file with its freshness bucket, valid only when a git
// timestamp was observed for that file.
type Freshness struct {
	RelPath  string
	Category FreshnessCategory
	LastSeen time.Time
}

// SideEffect is a single categorised hazardous call site.
type SideEffect struct {
	Category SideEffectCategory
	Callee   string
	File     string
	Line     int
}

// LogicMap is the symbolic, indentation-based rendering of a function's
// control-flow and side-effect events, produced only for the top-N
// highest-complexity functions.
type LogicMap struct {
	FunctionName   string
	Signature      string
	DocFirstLine   string
	FlowLines      []string
	SideEffects    []SideEffectCategory
	StateMutations []string // "self.x" targets assigned within the function
	ExternalInputs []string // recognised input patterns, e.g. "input(", "request."
	Complexity     int
	FullBodyBytes  int
	RenderedBytes  int
}

// Hazard flags a file whose size would consume a disproportionate share of
// an assistant's context window.
type Hazard struct {
	RelPath       string
	TokenEst      int64
	Reason        HazardReason
	SuggestedGlob string
}

// CLIArgument is one extracted argument of a detected entry point.
type CLIArgument struct {
	Name     string
	Required bool
	Default  string
	Help     string
}

// EntryPoint is a file recognised as a program entry surface.
type EntryPoint struct {
	RelPath   string
	Kind      EntryKind
	Framework CLIFramework
	Args      []CLIArgument
}

// EnvVar is one os.getenv / os.environ access site.
type EnvVar struct {
	Name     string
	Default  string // "" when absent
	Required bool   // true iff Default == "" (no default given)
	File     string
	Line     int
}

// LinterRules is the subset of lint configuration GapFeatures extracts
// from pyproject.toml / ruff.toml / .flake8.
type LinterRules struct {
	LineLength int
	Select     []string
	Ignore     []string
	Source     string // which file it was read from, "" if none found
}

// TestExample is the "Rosetta Stone" — the most illustrative short test
// file selected by GapFeatures.
type TestExample struct {
	RelPath string
	Text    string
}

// PersonaExcerpt is a long string literal resembling an agent/LLM prompt.
type PersonaExcerpt struct {
	RelPath string
	Excerpt string
}

// ProseSummary is the template-filled natural-language description of the
// codebase.
type ProseSummary struct {
	Text string
}

// TechDebtMarker is one TODO/FIXME/HACK/XXX/BUG/OPTIMIZE occurrence.
type TechDebtMarker struct {
	Marker string
	File   string
	Line   int
	Text   string
}

// TestFixture is a @pytest.fixture name extracted from a conftest.py.
type TestFixture struct {
	Name string
	File string
	Line int
}

// TestDirStats describes one discovered test root.
type TestDirStats struct {
	RelPath       string
	FileCount     int
	TestFuncCount int
	Category      string // e.g. "unit", "integration", "e2e", ""
}

// TestCoverageResult is TestCoverage's full output.
type TestCoverageResult struct {
	Dirs            []TestDirStats
	Fixtures        []TestFixture
	TestedSourceDirs   []string
	UntestedSourceDirs []string
}

// GitWarning records a soft-failure from the git analyzer (GitUnavailable,
// GitTimeout); these never abort the run.
type GitWarning struct {
	Kind    string // "unavailable" | "timeout"
	Message string
}
