// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EverySectionEnabled(t *testing.T) {
	c := Default()
	assert.True(t, c.Enabled(SectionPersonas))
	assert.True(t, c.Enabled(SectionHazards))
}

func TestPreset_MinimalOnlyEnablesGraphSections(t *testing.T) {
	c, err := Preset(PresetMinimal)
	require.NoError(t, err)
	assert.True(t, c.Enabled(SectionImportGraph))
	assert.False(t, c.Enabled(SectionPersonas))
	assert.False(t, c.Enabled(SectionGit))
}

func TestPreset_UnknownNameErrors(t *testing.T) {
	_, err := Preset("exhaustive")
	assert.Error(t, err)
}

func TestLoad_BareBoolAndTableForms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyxray.yaml")
	yamlContent := "sections:\n  git: false\n  hazards:\n    enabled: true\n    threshold: 5000\n  bogus_section: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	var warnings []string
	c, err := Load(path, func(msg string) { warnings = append(warnings, msg) })
	require.NoError(t, err)

	assert.False(t, c.Enabled(SectionGit))
	assert.True(t, c.Enabled(SectionHazards))
	threshold, ok := c.Threshold(SectionHazards)
	require.True(t, ok)
	assert.EqualValues(t, 5000, threshold)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "bogus_section")
}

func TestMerge_OverlayReplacesWholesalePerSection(t *testing.T) {
	base := Default()
	overlay := Config{Sections: map[string]Section{
		SectionGit: {Enabled: false},
	}}
	merged := Merge(base, overlay)

	assert.False(t, merged.Enabled(SectionGit))
	assert.True(t, merged.Enabled(SectionHazards), "sections overlay doesn't mention keep base's value")
}

func TestDisableSection_TurnsOffWithoutTouchingOthers(t *testing.T) {
	c := Default()
	c = DisableSection(c, SectionProse)
	assert.False(t, c.Enabled(SectionProse))
	assert.True(t, c.Enabled(SectionPersonas))
}

func TestEnabledMap_ProjectsToBoolOnly(t *testing.T) {
	c := Default()
	m := c.EnabledMap()
	assert.True(t, m[SectionGit])
	assert.Len(t, m, len(allSections))
}

func TestCountAndThreshold_AbsentWhenUnset(t *testing.T) {
	c := Default()
	_, ok := c.Count(SectionPillars)
	assert.False(t, ok)
	_, ok = c.Threshold(SectionHazards)
	assert.False(t, ok)
}
