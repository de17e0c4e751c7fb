// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package callgraph implements CallGraph: cross-module resolution of raw
// CallSites, "most called" ranking, reverse lookup, and per-symbol impact
// rating (§4.4).
//
// Resolution builds an alias index per file (import alias -> import
// path) and substitutes it against the call target's leading
// identifier, a best-effort textual match since Python calls are not
// statically resolvable in general.
package callgraph

import (
	"sort"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
)

// Graph is the resolved call graph for one analysis run.
type Graph struct {
	sites []model.CallSite
}

// Build resolves every CallSite's cross-module flag against the known
// import aliases for its source module, then returns the aggregated
// Graph. aliasesBySource maps each module to its alias -> target-module
// table, as derived from ImportGraph's edges.
func Build(sites []model.CallSite, aliasesBySource map[model.ModulePath]map[string]model.ModulePath) *Graph {
	resolved := make([]model.CallSite, len(sites))
	for i, cs := range sites {
		cs.CrossModule = isCrossModule(cs, aliasesBySource[cs.Source])
		resolved[i] = cs
	}
	return &Graph{sites: resolved}
}

// isCrossModule applies the §4.4 resolution rule: best-effort, using the
// leading identifier of the target. If it matches an imported alias in
// this module, the call is cross-module (it resolves to the aliased
// module); otherwise the call is treated as same-module.
func isCrossModule(cs model.CallSite, aliases map[string]model.ModulePath) bool {
	if len(aliases) == 0 {
		return false
	}
	lead := cs.Target
	if idx := strings.IndexByte(lead, '.'); idx >= 0 {
		lead = lead[:idx]
	}
	target, ok := aliases[lead]
	if !ok {
		return false
	}
	return target != cs.Source
}

// Summarize builds the serializable CallGraphSummary: the resolved sites
// plus "most called" ranked by total incidence descending, ties broken
// alphabetically (§4.4).
func (g *Graph) Summarize() model.CallGraphSummary {
	counts := map[string]int{}
	for _, cs := range g.sites {
		counts[cs.Target]++
	}

	symbols := make([]string, 0, len(counts))
	for sym := range counts {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if counts[symbols[i]] != counts[symbols[j]] {
			return counts[symbols[i]] > counts[symbols[j]]
		}
		return symbols[i] < symbols[j]
	})

	mostCalled := make([]model.SymbolCount, 0, len(symbols))
	for _, sym := range symbols {
		n := counts[sym]
		mostCalled = append(mostCalled, model.SymbolCount{Symbol: sym, Count: n, Impact: impactOf(n)})
	}

	return model.CallGraphSummary{Sites: g.sites, MostCalled: mostCalled}
}

// impactOf buckets a target symbol's total call-site count per §4.4: low
// (<5), medium (5-20), high (>20).
func impactOf(n int) model.ImpactRating {
	switch {
	case n < 5:
		return model.ImpactLow
	case n <= 20:
		return model.ImpactMedium
	default:
		return model.ImpactHigh
	}
}

// ReverseLookup returns every CallSite whose target matches query
// exactly, in source order.
func (g *Graph) ReverseLookup(query string) []model.CallSite {
	var out []model.CallSite
	for _, cs := range g.sites {
		if cs.Target == query {
			out = append(out, cs)
		}
	}
	return out
}

// AliasesFromEdges derives the alias index Build needs from a module's
// resolved import edges: only aliased imports participate, since an
// unaliased import gives no distinguishing leading identifier beyond the
// module's own last segment (already the common case Build's "otherwise
// same-module" fallback covers).
func AliasesFromEdges(edges []model.ImportEdge) map[model.ModulePath]map[string]model.ModulePath {
	out := map[model.ModulePath]map[string]model.ModulePath{}
	for _, e := range edges {
		if e.Alias == "" {
			continue
		}
		if out[e.Source] == nil {
			out[e.Source] = map[string]model.ModulePath{}
		}
		out[e.Source][e.Alias] = e.Target
	}
	return out
}
