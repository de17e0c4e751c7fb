// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package config implements the section-enable map (§6): named sections
// that can be toggled on or off and carry an optional count/threshold
// override, loaded from a YAML file and merged with a preset and CLI
// flags in the order defaults -> preset -> user config -> CLI flags,
// later entries overriding earlier ones.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Section names recognised in the "sections" table. Unknown keys are
// ignored with a warning rather than rejected (§6,
// "ConfigReferenceUnknown: Warning; ignore key").
const (
	SectionImportGraph        = "import_graph"
	SectionCallGraph          = "call_graph"
	SectionSideEffects        = "side_effects"
	SectionLogicMaps          = "logic_maps"
	SectionGit                = "git"
	SectionHazards            = "hazards"
	SectionEntryPoints        = "entry_points"
	SectionEnvVars            = "env_vars"
	SectionLinter             = "linter"
	SectionTestExample        = "test_example"
	SectionPillars            = "pillars"
	SectionMaintenanceHotspots = "maintenance_hotspots"
	SectionProse              = "prose"
	SectionPersonas           = "personas"
	SectionTestCoverage       = "test_coverage"
	SectionTechDebt           = "tech_debt"
)

// allSections lists every recognised section name, used to build the
// default config and to detect unknown keys on load.
var allSections = []string{
	SectionImportGraph, SectionCallGraph, SectionSideEffects, SectionLogicMaps,
	SectionGit,
	SectionHazards, SectionEntryPoints, SectionEnvVars, SectionLinter,
	SectionTestExample, SectionPillars, SectionMaintenanceHotspots,
	SectionProse, SectionPersonas,
	SectionTestCoverage, SectionTechDebt,
}

// AllSections returns every recognised section name, in the same fixed
// order allSections lists them, for callers (notably --no-<section>
// flag registration) that need to enumerate the canonical set.
func AllSections() []string {
	out := make([]string, len(allSections))
	copy(out, allSections)
	return out
}

// Section is one section's effective settings: whether it runs at all,
// plus the optional count (top-K style limits) and threshold (size/token
// style cutoffs) overrides a handful of sections accept.
type Section struct {
	Enabled   bool
	Count     *int
	Threshold *int64
}

// Config is the full effective section-enable map.
type Config struct {
	Sections map[string]Section
}

// Default returns every section enabled with no count/threshold override
// (each component falls back to its own package default).
func Default() Config {
	sections := make(map[string]Section, len(allSections))
	for _, name := range allSections {
		sections[name] = Section{Enabled: true}
	}
	return Config{Sections: sections}
}

// Preset names accepted by --preset.
const (
	PresetMinimal  = "minimal"
	PresetStandard = "standard"
	PresetFull     = "full"
)

// Preset returns the named preset's section-enable map. minimal covers
// only the always-cheap graph sections; standard adds git history and
// the textual GapFeatures sub-features a human would read every run;
// full enables everything, including the speculative, domain-heuristic
// sub-features (Prose, Personas) minimal/standard leave off.
func Preset(name string) (Config, error) {
	switch name {
	case PresetMinimal:
		return only(SectionImportGraph, SectionCallGraph, SectionSideEffects), nil
	case PresetStandard:
		return only(
			SectionImportGraph, SectionCallGraph, SectionSideEffects,
			SectionGit, SectionHazards, SectionEntryPoints, SectionEnvVars,
			SectionLinter, SectionTestExample, SectionTestCoverage, SectionTechDebt,
		), nil
	case PresetFull:
		return Default(), nil
	default:
		return Config{}, fmt.Errorf("unknown preset %q (want %q, %q, or %q)", name, PresetMinimal, PresetStandard, PresetFull)
	}
}

// only builds a Config where exactly the named sections are enabled and
// every other recognised section is present but disabled.
func only(enabled ...string) Config {
	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		want[name] = true
	}
	sections := make(map[string]Section, len(allSections))
	for _, name := range allSections {
		sections[name] = Section{Enabled: want[name]}
	}
	return Config{Sections: sections}
}

// rawDocument is the on-disk YAML shape: a single "sections" table whose
// values are either a bare bool or a {enabled, count, threshold} table.
type rawDocument struct {
	Sections map[string]rawSection `yaml:"sections"`
}

// rawSection accepts both YAML shapes a section's value may take by
// implementing UnmarshalYAML itself rather than relying on a struct tag,
// since go-toml/yaml can't express "bool or table" through tags alone.
type rawSection struct {
	Enabled   bool
	Count     *int
	Threshold *int64
}

func (r *rawSection) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var b bool
		if err := value.Decode(&b); err != nil {
			return fmt.Errorf("section value must be a bool or a table: %w", err)
		}
		r.Enabled = b
		return nil
	}

	var table struct {
		Enabled   *bool  `yaml:"enabled"`
		Count     *int   `yaml:"count"`
		Threshold *int64 `yaml:"threshold"`
	}
	if err := value.Decode(&table); err != nil {
		return fmt.Errorf("decode section table: %w", err)
	}
	r.Enabled = table.Enabled == nil || *table.Enabled
	r.Count = table.Count
	r.Threshold = table.Threshold
	return nil
}

// Load reads a user config file and returns its section overrides. A
// key that does not match a recognised section name is dropped with a
// warning written to warn (may be nil to suppress it), matching §6's
// ConfigReferenceUnknown handling.
func Load(path string, warn func(msg string)) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	known := make(map[string]bool, len(allSections))
	for _, name := range allSections {
		known[name] = true
	}

	sections := make(map[string]Section, len(doc.Sections))
	for name, raw := range doc.Sections {
		if !known[name] {
			if warn != nil {
				warn(fmt.Sprintf("config %s: unknown section %q, ignoring", path, name))
			}
			continue
		}
		sections[name] = Section{Enabled: raw.Enabled, Count: raw.Count, Threshold: raw.Threshold}
	}
	return Config{Sections: sections}, nil
}

// Merge layers overlay on top of base: any section overlay sets
// (present in overlay.Sections) replaces base's entry for that section
// wholesale; sections overlay never mentions keep base's value. This is
// the single operation §6's "defaults <- preset <- user config <- CLI
// flags" merge order is built from, applied once per stage.
func Merge(base, overlay Config) Config {
	out := make(map[string]Section, len(base.Sections))
	for name, s := range base.Sections {
		out[name] = s
	}
	for name, s := range overlay.Sections {
		out[name] = s
	}
	return Config{Sections: out}
}

// DisableSection returns a copy of c with one section's Enabled flag set
// to false, the effect of a --no-<section> CLI flag.
func DisableSection(c Config, name string) Config {
	out := make(map[string]Section, len(c.Sections))
	for k, v := range c.Sections {
		out[k] = v
	}
	if s, ok := out[name]; ok {
		s.Enabled = false
		out[name] = s
	} else {
		out[name] = Section{Enabled: false}
	}
	return Config{Sections: out}
}

// EnabledMap projects c down to the bool-only map pkg/orchestrator's
// WithEnabledSections accepts.
func (c Config) EnabledMap() map[string]bool {
	out := make(map[string]bool, len(c.Sections))
	for name, s := range c.Sections {
		out[name] = s.Enabled
	}
	return out
}

// Enabled reports whether the named section is on. An unrecognised or
// absent name defaults to enabled, matching Default()'s all-on baseline.
func (c Config) Enabled(name string) bool {
	s, ok := c.Sections[name]
	if !ok {
		return true
	}
	return s.Enabled
}

// Count returns the named section's count override and whether one was
// set.
func (c Config) Count(name string) (int, bool) {
	s, ok := c.Sections[name]
	if !ok || s.Count == nil {
		return 0, false
	}
	return *s.Count, true
}

// Threshold returns the named section's threshold override and whether
// one was set.
func (c Config) Threshold(name string) (int64, bool) {
	s, ok := c.Sections[name]
	if !ok || s.Threshold == nil {
		return 0, false
	}
	return *s.Threshold, true
}

// DefaultTemplate renders a commented YAML template matching --init-config's
// contract: a complete, valid, all-defaults document a user can trim down.
func DefaultTemplate() string {
	return `# pyxray configuration
# Each key under "sections" may be a bare bool, or a table with an
# "enabled" flag plus an optional "count" or "threshold" override for
# the sections that accept one. Unknown keys are ignored with a warning.
sections:
  import_graph: true
  call_graph: true
  side_effects: true
  logic_maps:
    enabled: true
    count: 5
  git: true
  hazards:
    enabled: true
    threshold: 10000
  entry_points: true
  env_vars: true
  linter: true
  test_example: true
  pillars:
    enabled: true
    count: 10
  maintenance_hotspots:
    enabled: true
    count: 10
  prose: true
  personas: true
  test_coverage: true
  tech_debt: true
`
}
