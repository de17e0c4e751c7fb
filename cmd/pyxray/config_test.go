// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/internal/config"
)

func TestResolveConfig_DefaultsOnly(t *testing.T) {
	cfg, err := resolveConfig("", "", nil, GlobalFlags{})
	require.NoError(t, err)
	assert.True(t, cfg.Enabled(config.SectionGit))
	assert.True(t, cfg.Enabled(config.SectionPersonas))
}

func TestResolveConfig_PresetNarrowsSections(t *testing.T) {
	cfg, err := resolveConfig(config.PresetMinimal, "", nil, GlobalFlags{})
	require.NoError(t, err)
	assert.True(t, cfg.Enabled(config.SectionImportGraph))
	assert.False(t, cfg.Enabled(config.SectionPersonas))
}

func TestResolveConfig_UnknownPresetErrors(t *testing.T) {
	_, err := resolveConfig("exhaustive", "", nil, GlobalFlags{})
	assert.Error(t, err)
}

func TestResolveConfig_CLIFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyxray.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sections:\n  git: true\n"), 0o644))

	cfg, err := resolveConfig("", path, []string{config.SectionGit}, GlobalFlags{Quiet: true})
	require.NoError(t, err)
	assert.False(t, cfg.Enabled(config.SectionGit), "a --no-<section> flag must win over the config file")
}

func TestResolveConfig_InvalidConfigPathErrors(t *testing.T) {
	_, err := resolveConfig("", filepath.Join(t.TempDir(), "missing.yaml"), nil, GlobalFlags{Quiet: true})
	assert.Error(t, err)
}
