// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package hotspots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
	"github.com/kraklabs/pyxray/pkg/pyast"
)

func TestBuild_RanksByComplexityAboveFloor(t *testing.T) {
	in := Input{
		Funcs: map[model.ModulePath][]model.FunctionRecord{
			"m": {
				{Name: "trivial", Complexity: 1},
				{Name: "busy", Complexity: 8},
				{Name: "medium", Complexity: 5},
			},
		},
	}
	out := Build(in, Options{})
	require.Len(t, out, 2)
	assert.Equal(t, "busy", out[0].FunctionName)
	assert.Equal(t, "medium", out[1].FunctionName)
}

func TestBuild_RespectsTopN(t *testing.T) {
	in := Input{
		Funcs: map[model.ModulePath][]model.FunctionRecord{
			"m": {
				{Name: "a", Complexity: 9},
				{Name: "b", Complexity: 8},
				{Name: "c", Complexity: 7},
			},
		},
	}
	out := Build(in, Options{TopN: 2})
	assert.Len(t, out, 2)
}

func TestRender_SymbolGrammarAndSideEffects(t *testing.T) {
	in := Input{
		Funcs: map[model.ModulePath][]model.FunctionRecord{
			"m": {{Name: "handler", Complexity: 4}},
		},
		FlowEvents: map[model.ModulePath]map[string][]pyast.FlowEvent{
			"m": {
				"handler": {
					{Kind: pyast.FlowTest, Text: "x > 0", Line: 2, Depth: 0},
					{Kind: pyast.FlowCall, Text: "cursor.execute", Line: 3, Depth: 1},
					{Kind: pyast.FlowSelfAssign, Text: "self.count", Line: 4, Depth: 1},
					{Kind: pyast.FlowReturn, Text: "True", Line: 5, Depth: 0},
				},
			},
		},
		SideEffects: []model.SideEffect{
			{Category: model.SideEffectDB, Callee: "cursor.execute", File: "m", Line: 3},
		},
		FileOf: func(m model.ModulePath) string { return string(m) },
	}
	out := Build(in, Options{})
	require.Len(t, out, 1)
	lm := out[0]

	require.Len(t, lm.FlowLines, 4)
	assert.Equal(t, "-> x > 0?", lm.FlowLines[0])
	assert.Contains(t, lm.FlowLines[1], "[DB: cursor.execute]")
	assert.Equal(t, "  {self.count}", lm.FlowLines[2])
	assert.Equal(t, "-> Return(True)", lm.FlowLines[3])

	require.Len(t, lm.SideEffects, 1)
	assert.Equal(t, model.SideEffectDB, lm.SideEffects[0])
	assert.Equal(t, []string{"self.count"}, lm.StateMutations)
}

func TestRender_UncategorizedCallIsOmitted(t *testing.T) {
	in := Input{
		Funcs: map[model.ModulePath][]model.FunctionRecord{
			"m": {{Name: "f", Complexity: 4}},
		},
		FlowEvents: map[model.ModulePath]map[string][]pyast.FlowEvent{
			"m": {"f": {{Kind: pyast.FlowCall, Text: "compute", Line: 1, Depth: 0}}},
		},
	}
	out := Build(in, Options{})
	require.Len(t, out, 1)
	assert.Empty(t, out[0].FlowLines)
}

func TestRender_BodyElisionAndLineTruncation(t *testing.T) {
	var events []pyast.FlowEvent
	for i := 0; i < 40; i++ {
		events = append(events, pyast.FlowEvent{Kind: pyast.FlowReturn, Text: "x", Line: i, Depth: 0})
	}
	in := Input{
		Funcs:      map[model.ModulePath][]model.FunctionRecord{"m": {{Name: "f", Complexity: 4}}},
		FlowEvents: map[model.ModulePath]map[string][]pyast.FlowEvent{"m": {"f": events}},
	}
	out := Build(in, Options{MaxBodyLines: 10})
	require.Len(t, out, 1)
	require.Len(t, out[0].FlowLines, 11)
	assert.Contains(t, out[0].FlowLines[10], "more lines")
}
