// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import "github.com/kraklabs/pyxray/pkg/model"

// Input gathers everything GapFeatures needs from earlier pipeline stages.
// Root is the analyzed tree's absolute path, used only by LinterRules
// (pyproject.toml / ruff.toml / .flake8 live outside the .py file set
// FileDiscovery enumerates).
type Input struct {
	Root               string
	Files              []model.FileRecord
	TestFiles          []model.FileRecord
	Classes            map[model.ModulePath][]model.ClassRecord
	Layers             map[model.ModulePath]model.Layer
	Imports            []model.ImportEdge
	GitRisk            []model.RiskEntry
	PillarCount        int
	HotspotCount       int
	HazardTokenThreshold int64
	Read               Reader
}

// Result is GapFeatures' full composite output, matching the relevant
// fields of AnalysisBundle.
type Result struct {
	Hazards     []model.Hazard
	EntryPoints []model.EntryPoint
	EnvVars     []model.EnvVar
	Linter      model.LinterRules
	TestExample *model.TestExample
	Pillars     []model.ModulePath
	Hotspots    []model.RiskEntry
	Prose       model.ProseSummary
	Personas    []model.PersonaExcerpt
}

// Build runs every GapFeatures sub-feature over in and assembles a Result.
func Build(in Input) Result {
	entryPoints := EntryPoints(in.Files, in.Read)
	return Result{
		Hazards:     Hazards(in.Files, HazardOptions{TokenThreshold: in.HazardTokenThreshold}),
		EntryPoints: entryPoints,
		EnvVars:     EnvVars(in.Files, in.Read),
		Linter:      LinterRules(in.Root),
		TestExample: TestExample(in.TestFiles, in.Read),
		Pillars:     Pillars(in.Imports, in.PillarCount),
		Hotspots:    MaintenanceHotspots(in.GitRisk, in.HotspotCount),
		Prose: Prose(ProseInput{
			Files:       in.Files,
			Layers:      in.Layers,
			Classes:     in.Classes,
			Imports:     in.Imports,
			EntryPoints: entryPoints,
			Read:        in.Read,
		}),
		Personas: Personas(in.Files, in.Read),
	}
}
