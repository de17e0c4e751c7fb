// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
)

func TestBuild_CrossModuleViaAlias(t *testing.T) {
	sites := []model.CallSite{
		{Source: "pkg.a", ContainingFunc: "run", Target: "np.array", Kind: model.CallSiteAttributeCall},
		{Source: "pkg.a", ContainingFunc: "run", Target: "helper", Kind: model.CallSiteNameCall},
	}
	aliases := map[model.ModulePath]map[string]model.ModulePath{
		"pkg.a": {"np": "numpy"},
	}
	g := Build(sites, aliases)
	summary := g.Summarize()
	require.Len(t, summary.Sites, 2)

	byTarget := map[string]bool{}
	for _, cs := range summary.Sites {
		byTarget[cs.Target] = cs.CrossModule
	}
	assert.True(t, byTarget["np.array"])
	assert.False(t, byTarget["helper"])
}

func TestSummarize_MostCalledRankedAndTiebroken(t *testing.T) {
	sites := []model.CallSite{
		{Target: "b"}, {Target: "b"}, {Target: "a"}, {Target: "a"}, {Target: "c"},
	}
	g := Build(sites, nil)
	summary := g.Summarize()
	require.Len(t, summary.MostCalled, 3)
	assert.Equal(t, "a", summary.MostCalled[0].Symbol)
	assert.Equal(t, "b", summary.MostCalled[1].Symbol)
	assert.Equal(t, "c", summary.MostCalled[2].Symbol)
}

func TestSummarize_ImpactRating(t *testing.T) {
	var sites []model.CallSite
	for i := 0; i < 21; i++ {
		sites = append(sites, model.CallSite{Target: "hot"})
	}
	for i := 0; i < 5; i++ {
		sites = append(sites, model.CallSite{Target: "warm"})
	}
	sites = append(sites, model.CallSite{Target: "cold"})

	g := Build(sites, nil)
	summary := g.Summarize()
	byTarget := map[string]model.ImpactRating{}
	for _, sc := range summary.MostCalled {
		byTarget[sc.Symbol] = sc.Impact
	}
	assert.Equal(t, model.ImpactHigh, byTarget["hot"])
	assert.Equal(t, model.ImpactMedium, byTarget["warm"])
	assert.Equal(t, model.ImpactLow, byTarget["cold"])
}

func TestReverseLookup(t *testing.T) {
	sites := []model.CallSite{
		{Target: "requests.post", Line: 1},
		{Target: "requests.post", Line: 5},
		{Target: "requests.get", Line: 9},
	}
	g := Build(sites, nil)
	found := g.ReverseLookup("requests.post")
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 5, found[1].Line)
}

func TestAliasesFromEdges_SkipsUnaliased(t *testing.T) {
	edges := []model.ImportEdge{
		{Source: "pkg.a", Target: "numpy", Alias: "np"},
		{Source: "pkg.a", Target: "os", Alias: ""},
	}
	aliases := AliasesFromEdges(edges)
	require.Contains(t, aliases, model.ModulePath("pkg.a"))
	assert.Equal(t, model.ModulePath("numpy"), aliases["pkg.a"]["np"])
	assert.NotContains(t, aliases["pkg.a"], "os")
}
