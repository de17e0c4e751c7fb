// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package sideeffect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
)

func fileOf(m model.ModulePath) string { return string(m) + ".py" }

func TestDetect_ClassifiesEachCategory(t *testing.T) {
	sites := []model.CallSite{
		{Source: "m", Target: "session.commit", Line: 1},
		{Source: "m", Target: "requests.post", Line: 2},
		{Source: "m", Target: "open", Line: 3},
		{Source: "m", Target: "os.getenv", Line: 4},
		{Source: "m", Target: "subprocess.run", Line: 5},
	}
	out := Detect(sites, fileOf)
	require.Len(t, out, 5)

	byLine := map[int]model.SideEffectCategory{}
	for _, se := range out {
		byLine[se.Line] = se.Category
	}
	assert.Equal(t, model.SideEffectDB, byLine[1])
	assert.Equal(t, model.SideEffectAPI, byLine[2])
	assert.Equal(t, model.SideEffectFile, byLine[3])
	assert.Equal(t, model.SideEffectEnv, byLine[4])
	assert.Equal(t, model.SideEffectSubprocess, byLine[5])
}

func TestDetect_AllowListDiscardsFalsePositives(t *testing.T) {
	sites := []model.CallSite{
		{Source: "m", Target: "config.get", Line: 1},
		{Source: "m", Target: "isinstance", Line: 2},
		{Source: "m", Target: "len", Line: 3},
		{Source: "m", Target: "fh.read", Line: 4},
	}
	out := Detect(sites, fileOf)
	assert.Empty(t, out)
}

func TestDetect_EnvGetNotSwallowedByAllowList(t *testing.T) {
	sites := []model.CallSite{
		{Source: "m", Target: "os.environ.get", Line: 1},
	}
	out := Detect(sites, fileOf)
	require.Len(t, out, 1)
	assert.Equal(t, model.SideEffectEnv, out[0].Category)
}

func TestDetect_SubscriptEnvAccess(t *testing.T) {
	sites := []model.CallSite{
		{Source: "m", Target: `os.environ["PATH"].split`, Line: 1, Kind: model.CallSiteAttributeCall},
	}
	out := Detect(sites, fileOf)
	require.Len(t, out, 1)
	assert.Equal(t, model.SideEffectEnv, out[0].Category)
}

func TestDetect_UncategorizedIsSkipped(t *testing.T) {
	sites := []model.CallSite{
		{Source: "m", Target: "compute_total", Line: 1},
	}
	out := Detect(sites, fileOf)
	assert.Empty(t, out)
}
