// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package model

// ParseStatus is the tagged outcome of attempting to read and parse a file.
// Parse failures return a tagged result rather than a thrown exception, so
// downstream analyzers can tolerate missing data for a file without the
// run aborting.
type ParseStatus string

const (
	ParseStatusParsed      ParseStatus = "parsed"
	ParseStatusSyntaxError ParseStatus = "syntax_error"
	ParseStatusUnreadable  ParseStatus = "unreadable"
)

// ModelKind classifies a class declaration by the data-modelling library it
// participates in, detected from its base classes and decorators.
type ModelKind string

const (
	ModelKindPydantic  ModelKind = "pydantic"
	ModelKindDataclass ModelKind = "dataclass"
	ModelKindTypedDict ModelKind = "typed_dict"
	ModelKindNamedTuple ModelKind = "named_tuple"
	ModelKindPlain     ModelKind = "plain"
)

// FieldSource distinguishes a class-body annotated assignment from an
// instance variable lifted out of __init__.
type FieldSource string

const (
	FieldSourceClassBody      FieldSource = "class_body"
	FieldSourceInitAssignment FieldSource = "init_assignment"
)

// ImportKind classifies an ImportEdge's target.
type ImportKind string

const (
	ImportKindInternal ImportKind = "internal"
	ImportKindExternal ImportKind = "external"
	ImportKindStdlib   ImportKind = "stdlib"
)

// Layer is the architectural role assigned to a module from its import
// fan-in/fan-out, per the thresholds in importgraph.Thresholds.
type Layer string

const (
	LayerFoundation    Layer = "foundation"
	LayerCore          Layer = "core"
	LayerOrchestration Layer = "orchestration"
	LayerLeaf          Layer = "leaf"
)

// SideEffectCategory is one of the five call-site hazard categories a
// SideEffectDetector assigns.
type SideEffectCategory string

const (
	SideEffectDB         SideEffectCategory = "db"
	SideEffectAPI        SideEffectCategory = "api"
	SideEffectFile       SideEffectCategory = "file"
	SideEffectEnv        SideEffectCategory = "env"
	SideEffectSubprocess SideEffectCategory = "subprocess"
)

// FreshnessCategory buckets a file's last-commit age against wall-clock
// time at run time.
type FreshnessCategory string

const (
	FreshnessActive  FreshnessCategory = "active"  // < 30 days
	FreshnessAging   FreshnessCategory = "aging"   // 30-90 days
	FreshnessStale   FreshnessCategory = "stale"   // 90-180 days
	FreshnessDormant FreshnessCategory = "dormant" // >= 180 days
)

// HazardReason explains why a file was flagged as context-window hazard.
type HazardReason string

const (
	HazardReasonLarge     HazardReason = "large"
	HazardReasonGenerated HazardReason = "generated"
	HazardReasonData      HazardReason = "data"
)

// EntryKind classifies how a file was recognised as a program entry point.
type EntryKind string

const (
	EntryKindMainGuard    EntryKind = "main_guard"
	EntryKindScriptEntry  EntryKind = "script_entry"
	EntryKindConsoleEntry EntryKind = "console_entry"
)

// CLIFramework is the argument-parsing library detected at an entry point.
type CLIFramework string

const (
	CLIFrameworkArgparse CLIFramework = "argparse"
	CLIFrameworkClick    CLIFramework = "click"
	CLIFrameworkTyper    CLIFramework = "typer"
	CLIFrameworkNone     CLIFramework = "none"
)

// ImpactRating buckets a call target's fan-in for GapFeatures/CallGraph
// reporting.
type ImpactRating string

const (
	ImpactLow    ImpactRating = "low"    // < 5 call sites
	ImpactMedium ImpactRating = "medium" // 5-20
	ImpactHigh   ImpactRating = "high"   // > 20
)
