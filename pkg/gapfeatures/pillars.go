// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"sort"

	"github.com/kraklabs/pyxray/pkg/model"
)

// DefaultPillarCount and DefaultHotspotCount are the top-K sizes for the
// pillars and maintenance-hotspots sub-features (§4.8).
const (
	DefaultPillarCount  = 10
	DefaultHotspotCount = 10
)

// Pillars implements GapFeatures' architectural-pillars sub-feature: the
// top-K internal modules by import in-degree, ties broken by module path.
func Pillars(edges []model.ImportEdge, topK int) []model.ModulePath {
	if topK <= 0 {
		topK = DefaultPillarCount
	}

	inDegree := map[model.ModulePath]int{}
	for _, e := range edges {
		if e.Kind == model.ImportKindInternal {
			inDegree[e.Target]++
		}
	}

	modules := make([]model.ModulePath, 0, len(inDegree))
	for m := range inDegree {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		if inDegree[modules[i]] != inDegree[modules[j]] {
			return inDegree[modules[i]] > inDegree[modules[j]]
		}
		return modules[i] < modules[j]
	})

	if topK > len(modules) {
		topK = len(modules)
	}
	return modules[:topK]
}

// MaintenanceHotspots implements GapFeatures' maintenance-hotspots
// sub-feature: the top-K files by git risk score. GitAnalyzer already
// returns its RiskEntry slice sorted score-descending, so this only slices.
func MaintenanceHotspots(risk []model.RiskEntry, topK int) []model.RiskEntry {
	if topK <= 0 {
		topK = DefaultHotspotCount
	}
	if topK > len(risk) {
		topK = len(risk)
	}
	out := make([]model.RiskEntry, topK)
	copy(out, risk[:topK])
	return out
}
